package mcptool

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"profileqa/app/service/dispatcher"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const (
	serverName    = "profileqa"
	serverVersion = "1.0.0"

	AskToolName = "ask_profile"
)

type Answerer interface {
	GetAnswer(ctx context.Context, question string) (string, error)
}

// Server exposes the profile dispatcher to MCP clients.
type Server struct {
	answerer Answerer
	mcp      *server.MCPServer
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(do.MustInvoke[*dispatcher.Service](di)), nil
}

func NewServer(answerer Answerer) *Server {
	s := &Server{
		answerer: answerer,
		mcp: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(askTool(), s.handleAsk)

	return s
}

func askTool() mcp.Tool {
	return mcp.NewTool(AskToolName,
		mcp.WithDescription("Answer a question about the profile owner, in Portuguese"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question about the profile, e.g. \"Quais são os seus idiomas?\""),
		),
	)
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Handler serves the streamable HTTP transport. Sessions are not tracked.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return mcp.NewToolResultError("question must not be blank"), nil
	}

	answer, err := s.answerer.GetAnswer(ctx, question)
	if err != nil {
		slog.Warn("MCP question failed",
			"question", question,
			"error", err,
		)
		return mcp.NewToolResultError("failed to answer: " + err.Error()), nil
	}

	return mcp.NewToolResultText(answer), nil
}

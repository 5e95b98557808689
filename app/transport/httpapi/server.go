package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"profileqa/app/config"
	"profileqa/app/service/dispatcher"
	"profileqa/app/service/knowledge"
	"profileqa/app/transport/mcptool"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	msgNoMessage   = "Nenhuma mensagem fornecida"
	msgBadRequest  = "Corpo da requisição inválido"
	msgAnswerError = "Não foi possível obter uma resposta"

	shutdownTimeout = 5 * time.Second
)

type Answerer interface {
	Answer(ctx context.Context, question string) (dispatcher.Answer, error)
}

type Snapshotter interface {
	Snapshot() (*knowledge.Snapshot, error)
}

type Server struct {
	cfg      config.Server
	answerer Answerer
	kb       Snapshotter
	validate *validator.Validate
	app      *fiber.App
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	KBVersion uint64 `json:"kb_version"`
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var mcpHandler http.Handler
	if cfg.Server.MCP {
		mcpHandler = do.MustInvoke[*mcptool.Server](di).Handler()
	}

	return NewServer(
		cfg.Server,
		do.MustInvoke[*dispatcher.Service](di),
		do.MustInvoke[*knowledge.Service](di),
		mcpHandler,
	), nil
}

// NewServer builds the HTTP boundary. mcpHandler is mounted under /mcp when not nil.
func NewServer(cfg config.Server, answerer Answerer, kb Snapshotter, mcpHandler http.Handler) *Server {
	s := &Server{
		cfg:      cfg,
		answerer: answerer,
		kb:       kb,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New(fiber.Config{
		AppName:               "profileqa",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}))

	app.Post("/chat", s.handleChat)
	app.Get("/healthz", s.handleHealth)
	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	s.app = app

	return s
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.cfg.Listen)
		errCh <- s.app.Listen(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		return oops.In("httpapi").With("addr", s.cfg.Listen).Wrapf(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return oops.In("httpapi").Wrapf(err, "shutdown")
	}

	slog.Info("HTTP server stopped")

	return nil
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msgBadRequest})
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msgNoMessage})
	}

	answer, err := s.answerer.Answer(c.UserContext(), req.Message)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: msgAnswerError})
	}

	return c.JSON(chatResponse{Response: answer.Text})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	snapshot, err := s.kb.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "loading"})
	}

	return c.JSON(healthResponse{Status: "ok", KBVersion: snapshot.Version})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	} else {
		slog.Error("HTTP handler failed",
			"path", c.Path(),
			"error", err,
		)
	}

	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

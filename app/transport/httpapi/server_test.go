package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"profileqa/app/config"
	"profileqa/app/service/dispatcher"
	"profileqa/app/service/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answererStub struct {
	questions []string
	answer    dispatcher.Answer
	err       error
}

func (a *answererStub) Answer(_ context.Context, question string) (dispatcher.Answer, error) {
	a.questions = append(a.questions, question)
	return a.answer, a.err
}

func testConfig() config.Server {
	return config.Server{Listen: ":0", CORSOrigins: "*"}
}

func loadedStore() *knowledge.Store {
	return knowledge.NewStore(knowledge.NewBuilder().
		Topic("nome", knowledge.TextValue("Pedro")).
		Build())
}

func doRequest(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &payload), string(data))
	}

	return resp.StatusCode, payload
}

func TestChat(t *testing.T) {
	answerer := &answererStub{answer: dispatcher.Answer{Text: "Não, não tenho filhos."}}
	s := NewServer(testConfig(), answerer, loadedStore(), nil)

	status, payload := doRequest(t, s, http.MethodPost, "/chat", `{"message":"  Você tem filhos?"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"response": "Não, não tenho filhos."}, payload)
	assert.Equal(t, []string{"Você tem filhos?"}, answerer.questions)
}

func TestChat_BadRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"missing message", `{}`, msgNoMessage},
		{"empty message", `{"message":""}`, msgNoMessage},
		{"blank message", `{"message":"   "}`, msgNoMessage},
		{"malformed json", `{"message":`, msgBadRequest},
		{"wrong type", `{"message":42}`, msgBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer := &answererStub{}
			s := NewServer(testConfig(), answerer, loadedStore(), nil)

			status, payload := doRequest(t, s, http.MethodPost, "/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.expected, payload["error"])
			assert.Empty(t, answerer.questions)
		})
	}
}

func TestChat_AnswerError(t *testing.T) {
	answerer := &answererStub{err: errors.New("fallback: oracle down")}
	s := NewServer(testConfig(), answerer, loadedStore(), nil)

	status, payload := doRequest(t, s, http.MethodPost, "/chat", `{"message":"Qual é o seu nome?"}`)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, msgAnswerError, payload["error"])
}

func TestHealth(t *testing.T) {
	s := NewServer(testConfig(), &answererStub{}, loadedStore(), nil)

	status, payload := doRequest(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
	assert.EqualValues(t, 1, payload["kb_version"])
}

func TestHealth_NotLoaded(t *testing.T) {
	s := NewServer(testConfig(), &answererStub{}, knowledge.NewStore(nil), nil)

	status, payload := doRequest(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "loading", payload["status"])
}

func TestMCPMount(t *testing.T) {
	var hits int
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0"}`))
	})

	withMCP := NewServer(testConfig(), &answererStub{}, loadedStore(), mcpHandler)
	status, _ := doRequest(t, withMCP, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, hits)

	withoutMCP := NewServer(testConfig(), &answererStub{}, loadedStore(), nil)
	status, _ = doRequest(t, withoutMCP, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
}

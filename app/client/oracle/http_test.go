package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"profileqa/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Answer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req httpRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Qual é o seu nome?", req.Inputs.Question)
		assert.Equal(t, "nome: Pedro", req.Inputs.Context)

		_, _ = w.Write([]byte(`{"answer": "Pedro", "score": 0.97, "start": 6, "end": 11}`))
	}))
	defer server.Close()

	client := NewHTTPClient(config.HTTPOracle{URL: server.URL, Token: "hf-token"})

	result, err := client.Answer(context.Background(), "Qual é o seu nome?", "nome: Pedro")
	require.NoError(t, err)
	assert.Equal(t, Result{Answer: "Pedro", Score: 0.97, Start: 6, End: 11}, result)
}

func TestHTTPClient_ListResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(` [{"answer": "Curitiba", "score": 0.8, "start": 8, "end": 16}, {"answer": "PR", "score": 0.1}]`))
	}))
	defer server.Close()

	client := NewHTTPClient(config.HTTPOracle{URL: server.URL})

	result, err := client.Answer(context.Background(), "Onde você mora?", "cidade: Curitiba")
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", result.Answer)
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Run("non 2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error": "Model is currently loading"}`))
		}))
		defer server.Close()

		_, err := NewHTTPClient(config.HTTPOracle{URL: server.URL}).Answer(context.Background(), "q", "c")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "Model is currently loading")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewHTTPClient(config.HTTPOracle{URL: server.URL}).Answer(context.Background(), "q", "c")
		assert.Error(t, err)
	})

	t.Run("empty result list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		_, err := NewHTTPClient(config.HTTPOracle{URL: server.URL}).Answer(context.Background(), "q", "c")
		assert.Error(t, err)
	})

	t.Run("empty context", func(t *testing.T) {
		_, err := NewHTTPClient(config.HTTPOracle{URL: "http://127.0.0.1:0"}).Answer(context.Background(), "q", "")
		assert.ErrorIs(t, err, ErrEmptyContext)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewHTTPClient(config.HTTPOracle{URL: server.URL}).Answer(ctx, "q", "c")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

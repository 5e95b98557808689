package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"profileqa/app/config"
)

const maxErrorBody = 1 << 10

type httpRequest struct {
	Inputs httpInputs `json:"inputs"`
}

type httpInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// HTTPClient calls a question-answering inference endpoint, e.g. a Hugging Face
// hosted extractive model.
type HTTPClient struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPClient(cfg config.HTTPOracle) *HTTPClient {
	return &HTTPClient{
		url:    cfg.URL,
		token:  cfg.Token,
		client: &http.Client{},
	}
}

func (c *HTTPClient) Answer(ctx context.Context, question, passage string) (Result, error) {
	if passage == "" {
		return Result{}, ErrEmptyContext
	}

	payload, err := json.Marshal(httpRequest{Inputs: httpInputs{Question: question, Context: passage}})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to call oracle: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read oracle response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return Result{}, fmt.Errorf("oracle returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	return decodeResult(body)
}

// decodeResult accepts a single result object or a list of ranked results.
func decodeResult(body []byte) (Result, error) {
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var results []Result
		if err := json.Unmarshal(body, &results); err != nil {
			return Result{}, fmt.Errorf("failed to decode oracle response: %w", err)
		}
		if len(results) == 0 {
			return Result{}, fmt.Errorf("oracle returned no results")
		}
		return results[0], nil
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("failed to decode oracle response: %w", err)
	}
	return result, nil
}

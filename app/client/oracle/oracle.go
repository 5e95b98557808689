package oracle

import (
	"context"
	"errors"

	"profileqa/app/config"

	"github.com/samber/do"
)

var ErrEmptyContext = errors.New("oracle context is empty")

// Result is an extractive answer: a span of the context and its confidence.
type Result struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// Oracle extracts the answer to a question from a context text.
type Oracle interface {
	Answer(ctx context.Context, question, passage string) (Result, error)
}

func New(di *do.Injector) (Oracle, error) {
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.Oracle.Provider {
	case "llm":
		return NewLLMClient(cfg.Oracle.LLM)
	default:
		return NewHTTPClient(cfg.Oracle.HTTP), nil
	}
}

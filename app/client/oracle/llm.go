package oracle

import (
	"context"
	"fmt"
	"strings"

	"profileqa/app/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	llmTemperature = 0
	llmMaxTokens   = 200
)

const extractPromptTemplate = `Você responde perguntas sobre uma pessoa usando apenas o contexto abaixo.
Copie do contexto o menor trecho que responde à pergunta, exatamente como está escrito.
Não explique, não reformule e não adicione pontuação. Se o contexto não tiver a resposta, responda com uma linha vazia.

Contexto:
{context}

Pergunta: {question}
Trecho:`

// LLMClient turns a chat model into an extractive oracle by asking it to copy
// the answering span from the context.
type LLMClient struct {
	model llms.Model
}

func NewLLMClient(cfg config.LLMOracle) (*LLMClient, error) {
	model, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithCallback(LogCallbackHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return NewLLMClientWithModel(model), nil
}

func NewLLMClientWithModel(model llms.Model) *LLMClient {
	return &LLMClient{model: model}
}

func (c *LLMClient) Answer(ctx context.Context, question, passage string) (Result, error) {
	if passage == "" {
		return Result{}, ErrEmptyContext
	}

	prompt := strings.NewReplacer("{context}", passage, "{question}", question).Replace(extractPromptTemplate)

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(llmTemperature),
		llms.WithMaxTokens(llmMaxTokens),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate completion: %w", err)
	}

	answer := cleanSpan(completion)

	result := Result{Answer: answer, Start: -1, End: -1}
	if answer == "" {
		return result, nil
	}

	if start := strings.Index(passage, answer); start >= 0 {
		result.Start = start
		result.End = start + len(answer)
		result.Score = 1
	}

	return result, nil
}

func cleanSpan(completion string) string {
	span := strings.TrimSpace(completion)
	span = strings.Trim(span, "`\"")
	return strings.TrimSpace(span)
}

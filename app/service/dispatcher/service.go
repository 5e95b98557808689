package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"profileqa/app/config"
	"profileqa/app/service/fallback"
	"profileqa/app/service/journal"
	"profileqa/app/service/knowledge"

	"github.com/samber/do"
)

type Snapshotter interface {
	Snapshot() (*knowledge.Snapshot, error)
}

type Fallback interface {
	Answer(ctx context.Context, question string, snapshot *knowledge.Snapshot) (string, error)
}

type Recorder interface {
	Add(record journal.Record)
}

// Service answers questions about the profile. It holds no mutable state of
// its own and is safe for concurrent use.
type Service struct {
	kb       Snapshotter
	fallback Fallback
	recorder Recorder
	rules    []rule
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[*knowledge.Service](di),
		do.MustInvoke[*fallback.Service](di),
		do.MustInvoke[*journal.Service](di),
		cfg.Schema,
	), nil
}

func NewService(kb Snapshotter, fallback Fallback, recorder Recorder, schema config.Schema) *Service {
	return &Service{
		kb:       kb,
		fallback: fallback,
		recorder: recorder,
		rules:    newRules(schema),
	}
}

// Classify returns the category the question resolves under with the current
// knowledge base.
func (s *Service) Classify(question string) Category {
	snapshot, err := s.kb.Snapshot()
	if err != nil {
		return CategoryOpenEnded
	}

	q := NewQuestion(question)
	for _, r := range s.rules {
		if r.match(q, snapshot.KB) {
			return r.category
		}
	}

	return CategoryOpenEnded
}

// Answer resolves the question through the rules and falls back to the oracle
// for open-ended questions. Only the oracle path can fail.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	start := time.Now()

	snapshot, err := s.kb.Snapshot()
	if err != nil {
		return Answer{}, err
	}

	answer, err := s.resolve(ctx, NewQuestion(question), snapshot)
	duration := time.Since(start)

	s.record(question, answer, err, duration)

	if err != nil {
		slog.Error("Failed to answer question",
			"question", question,
			"category", answer.Category.String(),
			"kb_version", answer.KBVersion,
			"duration", duration,
			"error", err,
		)
		return answer, err
	}

	slog.Info("Answered question",
		"question", question,
		"category", answer.Category.String(),
		"kb_version", answer.KBVersion,
		"duration", duration,
	)

	return answer, nil
}

// GetAnswer is Answer without the metadata.
func (s *Service) GetAnswer(ctx context.Context, question string) (string, error) {
	answer, err := s.Answer(ctx, question)
	return answer.Text, err
}

func (s *Service) resolve(ctx context.Context, q Question, snapshot *knowledge.Snapshot) (Answer, error) {
	answer := Answer{
		Category:  CategoryOpenEnded,
		KBVersion: snapshot.Version,
	}

	for _, r := range s.rules {
		if r.match(q, snapshot.KB) {
			answer.Category = r.category
			answer.Text = r.resolve(q, snapshot.KB)
			return answer, nil
		}
	}

	if snapshot.Context == "" {
		answer.Text = NoInformation
		return answer, nil
	}

	text, err := s.fallback.Answer(ctx, q.Raw, snapshot)
	if err != nil {
		return answer, fmt.Errorf("fallback: %w", err)
	}
	answer.Text = text

	return answer, nil
}

func (s *Service) record(question string, answer Answer, err error, duration time.Duration) {
	if s.recorder == nil {
		return
	}

	record := journal.Record{
		Question:  question,
		Category:  answer.Category.String(),
		Answer:    answer.Text,
		Duration:  duration,
		KBVersion: answer.KBVersion,
	}
	if err != nil {
		record.Error = err.Error()
	}

	s.recorder.Add(record)
}

package journal

import (
	"context"
	"log/slog"
	"time"

	"profileqa/app/config"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
)

var _ do.Shutdownable = (*Service)(nil)

const writeTimeout = 5 * time.Second

type Service struct {
	queue chan Record
	sink  Sink
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if !cfg.Journal.Enabled {
		return &Service{}, nil
	}

	var (
		sink Sink
		err  error
	)
	switch cfg.Journal.Sink {
	case "postgres":
		sink, err = OpenPostgres(do.MustInvoke[context.Context](di), cfg.DB)
	default:
		sink, err = OpenFile(cfg.Journal.Path)
	}
	if err != nil {
		return nil, oops.In("journal").With("sink", cfg.Journal.Sink).Wrap(err)
	}

	return NewService(sink, cfg.Journal.BufferSize), nil
}

func NewService(sink Sink, bufferSize int) *Service {
	return &Service{
		queue: make(chan Record, bufferSize),
		sink:  sink,
	}
}

func (s *Service) Enabled() bool {
	return s.queue != nil
}

// Add queues a record without blocking. Records are dropped when the queue is full.
func (s *Service) Add(record Record) {
	if s.queue == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Debug("journal is closed, record dropped", "question", record.Question)
		}
	}()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	select {
	case s.queue <- record:
	default:
		slog.Warn("journal queue is full, record dropped", "question", record.Question)
	}
}

// Run writes queued records to the sink until ctx is done or the queue is closed.
// Records already queued when ctx is done are still written.
func (s *Service) Run(ctx context.Context) {
	if s.queue == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.drain(ctx)
			return
		case record, ok := <-s.queue:
			if !ok {
				return
			}
			s.write(ctx, record)
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for {
		select {
		case record, ok := <-s.queue:
			if !ok {
				return
			}
			s.write(ctx, record)
		default:
			return
		}
	}
}

func (s *Service) write(ctx context.Context, record Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := s.sink.Write(ctx, record); err != nil {
		slog.Error("Failed to write journal record",
			"id", record.ID,
			"question", record.Question,
			"error", err,
		)
	}
}

func (s *Service) Shutdown() error {
	if s.queue == nil {
		return nil
	}

	close(s.queue)

	return s.sink.Close()
}

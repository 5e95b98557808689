package journal

import (
	"context"
	"time"
)

// Record is one answered (or failed) question.
type Record struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	Category  string        `json:"category"`
	Answer    string        `json:"answer"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	KBVersion uint64        `json:"kb_version"`
	CreatedAt time.Time     `json:"created_at"`
}

type Sink interface {
	Write(ctx context.Context, record Record) error
	Close() error
}

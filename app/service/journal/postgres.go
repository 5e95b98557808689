package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"profileqa/app/config"

	_ "github.com/lib/pq"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS profileqa_journal (
    id UUID PRIMARY KEY,
    question TEXT NOT NULL,
    category VARCHAR(32) NOT NULL,
    answer TEXT,
    error TEXT,
    duration_ms BIGINT NOT NULL,
    kb_version BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const insertQuery = `
INSERT INTO profileqa_journal (id, question, category, answer, error, duration_ms, kb_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type PostgresSink struct {
	db *sql.DB
}

func DSN(cfg config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Pass),
		Host:     cfg.Host,
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func OpenPostgres(ctx context.Context, cfg config.DB) (*PostgresSink, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sink, err := NewPostgresSink(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("Journal connected to postgres", "host", cfg.Host, "database", cfg.Database)

	return sink, nil
}

// NewPostgresSink makes sure the journal table exists.
func NewPostgresSink(ctx context.Context, db *sql.DB) (*PostgresSink, error) {
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create journal table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

func (p *PostgresSink) Write(ctx context.Context, record Record) error {
	_, err := p.db.ExecContext(ctx, insertQuery,
		record.ID,
		record.Question,
		record.Category,
		sql.NullString{String: record.Answer, Valid: record.Answer != ""},
		sql.NullString{String: record.Error, Valid: record.Error != ""},
		record.Duration.Milliseconds(),
		int64(record.KBVersion),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal record: %w", err)
	}

	return nil
}

func (p *PostgresSink) Close() error {
	return p.db.Close()
}

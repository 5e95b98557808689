package knowledge

import (
	"context"
	"log/slog"
	"path/filepath"

	"profileqa/app/config"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/do"
	"github.com/samber/oops"
)

type Service struct {
	cfg    *config.Config
	layout Layout
	store  *Store
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		cfg: cfg,
		layout: Layout{
			ContextKey:     cfg.KnowledgeBase.ContextKey,
			BinaryFactsKey: cfg.KnowledgeBase.BinaryFactsKey,
		},
		store: NewStore(nil),
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) Snapshot() (*Snapshot, error) {
	return s.store.Snapshot()
}

// Reload parses the document again and publishes it. The previous snapshot
// stays in place when parsing fails.
func (s *Service) Reload() error {
	kb, err := LoadFile(s.cfg.KnowledgeBase.Path, s.layout)
	if err != nil {
		return err
	}

	snapshot := s.store.Swap(kb)

	slog.Info("Knowledge base loaded",
		"path", s.cfg.KnowledgeBase.Path,
		"version", snapshot.Version,
		"topics", kb.Len(),
		"facts", len(kb.Facts()),
	)

	return nil
}

// Watch reloads the document whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are handled.
func (s *Service) Watch(ctx context.Context) error {
	if !s.cfg.KnowledgeBase.Watch {
		return nil
	}

	path, err := filepath.Abs(s.cfg.KnowledgeBase.Path)
	if err != nil {
		return oops.Errorf("failed to resolve knowledge base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return oops.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return oops.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	slog.Info("Watching knowledge base", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				slog.Error("Knowledge base reload failed", "path", path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Knowledge base watcher error", "error", err)
		}
	}
}

package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"profileqa/app/client/oracle"
	"profileqa/app/config"
	"profileqa/app/service/knowledge"
	"profileqa/app/util/mylog"

	"github.com/patrickmn/go-cache"
	"github.com/samber/do"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrOracleUnavailable is reported by the breaker while the circuit is open.
// Callers never see it; they get the configured fallback answer instead.
var ErrOracleUnavailable = errors.New("oracle is unavailable")

type Service struct {
	cfg     config.Oracle
	oracle  oracle.Oracle
	breaker *gobreaker.CircuitBreaker[oracle.Result]
	limiter *rate.Limiter
	answers *cache.Cache
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg.Oracle, do.MustInvoke[oracle.Oracle](di)), nil
}

func NewService(cfg config.Oracle, o oracle.Oracle) *Service {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker[oracle.Result](gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Oracle circuit changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
				mylog.Notify(),
			)
		},
	})

	return &Service{
		cfg:     cfg,
		oracle:  o,
		breaker: breaker,
		limiter: rate.NewLimiter(limit, burst),
		answers: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Answer asks the oracle for the answer to question within the snapshot's
// flattened context and returns only the answer text.
func (s *Service) Answer(ctx context.Context, question string, snapshot *knowledge.Snapshot) (string, error) {
	key := cacheKey(snapshot.Version, question)
	if cached, ok := s.answers.Get(key); ok {
		return cached.(string), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	result, err := s.breaker.Execute(func() (oracle.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		return s.oracle.Answer(ctx, question, snapshot.Context)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		slog.Warn("Oracle unavailable, using fallback answer",
			"question", question,
			"error", errors.Join(ErrOracleUnavailable, err),
		)
		return s.cfg.FallbackAnswer, nil
	}
	if err != nil {
		return "", err
	}

	slog.Debug("Oracle answered",
		"question", question,
		"answer", result.Answer,
		"score", result.Score,
		"start", result.Start,
		"end", result.End,
	)

	if s.cfg.CacheTTL > 0 {
		s.answers.SetDefault(key, result.Answer)
	}

	return result.Answer, nil
}

// cacheKey keeps case and accents: the oracle sees the question as typed.
func cacheKey(version uint64, question string) string {
	return strconv.FormatUint(version, 10) + "|" + strings.TrimSpace(question)
}

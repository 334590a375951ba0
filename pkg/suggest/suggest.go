package suggest

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultMinLength = 2
	DefaultLimit     = 8
	DefaultTimeout   = 2 * time.Second
)

var (
	noSuggests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_suggest_total",
		Help: "The total number of suggestion lookups sent to a backend",
	})
	suggestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_suggest_errors_total",
		Help: "The total number of failed suggestion lookups",
	})
)

// Backend produces completions for a query.
type Backend interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

type BackendFunc func(ctx context.Context, query string) ([]string, error)

func (f BackendFunc) Suggest(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

// Service bounds a backend call in time and degrades every failure to no suggestions.
type Service struct {
	Backend   Backend
	MinLength int
	Limit     int
	Timeout   time.Duration
}

func NewService(backend Backend) *Service {
	return &Service{
		Backend:   backend,
		MinLength: DefaultMinLength,
		Limit:     DefaultLimit,
		Timeout:   DefaultTimeout,
	}
}

func (s *Service) Suggest(ctx context.Context, query string) []string {
	if len([]rune(strings.TrimSpace(query))) < s.MinLength || s.Backend == nil {
		return []string{}
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	go noSuggests.Inc()
	res, err := s.Backend.Suggest(ctx, query)
	if err != nil {
		suggestErrors.Inc()
		log.Printf("Suggestions for %q failed: %v", query, err)
		return []string{}
	}
	if s.Limit > 0 && len(res) > s.Limit {
		res = res[:s.Limit]
	}
	return res
}

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stoalabs/ratebot/internal/domain"
	"github.com/stoalabs/ratebot/internal/metrics"
	"github.com/stoalabs/ratebot/internal/observability"
)

// maxMessageRunes is the hard cap on inbound message length, in code points.
const maxMessageRunes = 4096

// Service is the chat orchestrator: session management plus the single
// "send a user message, get a reply" operation.
type Service struct {
	registries domain.RegistryStore
	llm        domain.CompletionClient
	rates      domain.RateProvider
	metrics    *metrics.Metrics
	now        func() time.Time

	// one mutex per user; serializes turns for the same identity while
	// turns for different users run in parallel.
	turnLocks sync.Map
}

func NewService(
	registries domain.RegistryStore,
	llm domain.CompletionClient,
	rates domain.RateProvider,
	m *metrics.Metrics,
) *Service {
	return &Service{
		registries: registries,
		llm:        llm,
		rates:      rates,
		metrics:    m,
		now:        time.Now,
	}
}

// AddSession creates a session named name for the user and activates it. An
// empty name gets a timestamp-derived one. Creating an existing session is
// idempotent; it is still activated. Returns the resulting name.
func (s *Service) AddSession(ctx context.Context, userID domain.UserID, name string) (string, error) {
	reg := s.registries.GetOrCreate(userID)

	if name == "" {
		name = domain.DefaultSessionName(s.now())
	}
	if reg.AddSession(name) {
		s.metrics.SessionsCreatedTotal.Inc()
	}
	if err := reg.SetActive(name); err != nil {
		return "", fmt.Errorf("activating session %q: %w", name, err)
	}

	s.metrics.KnownUsers.Set(float64(s.registries.Len()))

	observability.LoggerFromContext(ctx).Info("session added",
		"user_id", userID,
		"session", name,
	)
	return name, nil
}

// ActiveSessionName returns the name of the user's active session.
func (s *Service) ActiveSessionName(userID domain.UserID) string {
	return s.registries.GetOrCreate(userID).ActiveName()
}

// ListSessions returns the user's session names in creation order.
func (s *Service) ListSessions(userID domain.UserID) []string {
	return s.registries.GetOrCreate(userID).SessionNames()
}

// SwitchSession activates an existing session. Unknown names fail with
// domain.ErrSessionNotFound and leave the active session unchanged.
func (s *Service) SwitchSession(ctx context.Context, userID domain.UserID, name string) error {
	if err := s.registries.GetOrCreate(userID).SetActive(name); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info("session switched",
		"user_id", userID,
		"session", name,
	)
	return nil
}

// SendMessage runs one conversation turn: refresh the preamble, send the
// transcript with the new user message to the model, and commit both the
// user and assistant messages once the model call succeeds. A failed
// completion leaves the transcript untouched and the error propagates.
func (s *Service) SendMessage(ctx context.Context, userID domain.UserID, text string) (string, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	reg := s.registries.GetOrCreate(userID)
	sess := reg.ActiveSession()

	log := observability.LoggerFromContext(ctx).With(
		"user_id", userID,
		"session", reg.ActiveName(),
	)

	text = truncate(text, maxMessageRunes)

	sess.SetPreamble(s.fetchPreamble(ctx, log))

	candidate := append(sess.Transcript(), domain.Message{Role: domain.RoleUser, Content: text})

	start := s.now()
	reply, err := s.llm.Complete(ctx, candidate)
	s.metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.TurnsTotal.WithLabelValues("error").Inc()
		log.Error("completion failed", "error", err)
		return "", fmt.Errorf("completing turn: %w", err)
	}

	sess.Append(domain.RoleUser, text)
	sess.Append(domain.RoleAssistant, reply)

	s.metrics.TurnsTotal.WithLabelValues("ok").Inc()
	s.metrics.KnownUsers.Set(float64(s.registries.Len()))
	log.Info("turn completed", "turns", sess.TurnCount())

	return reply, nil
}

// fetchPreamble asks the rate provider for fresh rates and renders them.
// This is the single absorb point for pricing failures: they degrade to an
// empty preamble and never abort the turn.
func (s *Service) fetchPreamble(ctx context.Context, log *slog.Logger) string {
	rates, err := s.rates.LatestRates(ctx)
	if err != nil {
		s.metrics.RateFetchFailuresTotal.Inc()
		log.Warn("rate fetch failed, using empty preamble", "error", err)
		return ""
	}
	return buildPreamble(rates)
}

func (s *Service) userLock(userID domain.UserID) *sync.Mutex {
	v, _ := s.turnLocks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

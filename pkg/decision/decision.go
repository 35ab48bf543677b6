// Package decision orchestrates the intent learning loop.
//
// A query moves through a small state machine:
//
//	Submitted → TentativelyDecided → Confirmed   (terminal)
//	                              ↘ Expired      (terminal)
//
// Decide produces a tentative decision and stakes the query's embedding
// in the pending cache under a fresh token. Confirm consumes the token
// and commits the embedding to the exemplar store under the label the
// user confirmed — which may differ from the tentative prediction; a
// correction is a normal confirm, and committing the corrected label is
// exactly how the system learns from mistakes. Entries evicted before
// confirmation are silently discarded (Expired); there is no distinct
// rejected path.
//
// The service exposes exactly four operations: Decide, Confirm, Stats,
// and Intents. Confidence-derived presentation policy (status labels,
// next actions) is a collaborator of the route layer, not of this
// package.
package decision

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vozaid/vozaid/pkg/exemplar"
	"github.com/vozaid/vozaid/pkg/intent"
	"github.com/vozaid/vozaid/pkg/matcher"
	"github.com/vozaid/vozaid/pkg/pending"
)

// ErrTokenNotFound is returned by Confirm when the token is unknown,
// already consumed, or evicted from the pending cache.
var ErrTokenNotFound = errors.New("decision: pending embedding not found or expired")

// ErrInvalidIntent mirrors the store's sentinel so callers can match
// either layer.
var ErrInvalidIntent = exemplar.ErrInvalidIntent

// Decision is the ephemeral result of one query. It is never persisted.
type Decision struct {
	// Intent is the tentative best match, or intent.Unknown on cold
	// start or when the query carried no embedding.
	Intent intent.Intent

	// Confidence is the raw matcher score in [0, 1].
	Confidence float64

	// Alternatives are the runner-up labels, best first.
	Alternatives []intent.Intent

	// Token references the staked embedding for a later Confirm.
	// Empty when the query carried no embedding; such queries cannot
	// participate in the learning loop.
	Token string
}

// Service owns the learning-loop state transitions over the exemplar
// store and the pending cache.
type Service struct {
	store  *exemplar.Store
	cache  *pending.Cache
	match  *matcher.Matcher
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger (default slog.Default).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a decision service over the given store, cache, and
// matcher.
func New(store *exemplar.Store, cache *pending.Cache, match *matcher.Matcher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cache:  cache,
		match:  match,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide produces a tentative decision for a query embedding.
//
// With an embedding present it runs the matcher against the current
// exemplars and stakes the embedding for confirmation. Staking does not
// touch the exemplar store: an unconfirmed query never influences future
// matching. A nil or empty embedding (the upstream model produced none)
// yields an Unknown decision with no token.
func (s *Service) Decide(ctx context.Context, embedding []float32) Decision {
	if len(embedding) == 0 {
		return Decision{
			Intent:       intent.Unknown,
			Confidence:   0,
			Alternatives: intent.All()[:3],
		}
	}

	pred := s.match.Predict(embedding, s.store.Exemplars())
	token := s.cache.Stake(embedding)

	s.logger.Info("tentative decision",
		"intent", pred.Intent,
		"confidence", pred.Confidence,
		"token", token)

	return Decision{
		Intent:       pred.Intent,
		Confidence:   pred.Confidence,
		Alternatives: pred.Alternatives,
		Token:        token,
	}
}

// Confirm commits the staked embedding under the confirmed label and
// returns the updated per-intent exemplar counts.
//
// The label is validated before the token is consumed, so a confirm with
// a bad label leaves the pending entry intact and retryable. An unknown,
// expired, or already-consumed token yields ErrTokenNotFound.
func (s *Service) Confirm(ctx context.Context, token string, label intent.Intent) (map[intent.Intent]int, error) {
	if !intent.Valid(label) {
		return nil, ErrInvalidIntent
	}

	embedding, ok := s.cache.Take(token)
	if !ok {
		return nil, ErrTokenNotFound
	}

	if err := s.store.Add(ctx, label, embedding); err != nil {
		// Unreachable for ErrInvalidIntent (validated above); kept for
		// future store-side failure modes.
		return nil, err
	}

	s.logger.Info("intent confirmed", "intent", label, "token", token)
	return s.store.Stats(), nil
}

// Stats returns the exemplar count per intent.
func (s *Service) Stats() map[intent.Intent]int {
	return s.store.Stats()
}

// Intents returns the closed enumeration in stable order.
func (s *Service) Intents() []intent.Intent {
	return intent.All()
}

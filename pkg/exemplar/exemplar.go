// Package exemplar maintains the durable mapping from intent to its
// confirmed voice-embedding exemplars.
//
// The store is the learning substrate of the system: every confirmed
// intent appends the query's embedding to that intent's exemplar list,
// and future matching scores queries against those lists. Exemplar order
// is insertion order; it carries no matching semantics but is preserved
// for auditability.
//
// # Persistence
//
// The store mirrors its in-memory state to an injected [Snapshot]
// backend after every mutation. Saves write the full mapping at once, so
// a crash between mutation and save loses at most the one unsaved
// exemplar and can never corrupt previously persisted state. Save
// failures are logged and reported through [Store.Err]; the in-memory
// state remains authoritative for the running process and the next
// successful save restores durability.
package exemplar

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vozaid/vozaid/pkg/intent"
)

// ErrInvalidIntent is returned when a label outside the closed
// enumeration is used for a mutation.
var ErrInvalidIntent = errors.New("exemplar: intent not in the closed enumeration")

// Snapshot is the persistence backend interface.
//
// Load returns the raw persisted mapping keyed by label string; the
// store filters it against the closed enumeration on its own (unknown
// labels are dropped, missing ones initialized empty), so backends stay
// forward/backward compatible with enumeration changes.
//
// Save must replace the previously persisted mapping as a whole.
type Snapshot interface {
	Load(ctx context.Context) (map[string][][]float32, error)
	Save(ctx context.Context, data map[string][][]float32) error
}

// Store is the process-wide exemplar store.
//
// All mutations are serialized; reads observe a consistent snapshot and
// never block on persistence I/O.
type Store struct {
	snap   Snapshot
	logger *slog.Logger

	// saveMu serializes mutate+persist pairs so persisted snapshots are
	// written in mutation order. Held across Save, which may do network
	// I/O; readers only ever take mu and are not blocked by it.
	saveMu sync.Mutex

	mu      sync.RWMutex
	data    map[intent.Intent][][]float32
	saveErr error // last save failure, nil after a successful save
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger (default slog.Default).
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a Store over the given snapshot backend and loads the
// persisted state.
//
// Load failures are never fatal: a missing or unreadable snapshot logs a
// warning and yields an all-empty store. Every intent of the closed
// enumeration always has an entry, and labels unknown to the enumeration
// are ignored.
func Open(ctx context.Context, snap Snapshot, opts ...Option) *Store {
	s := &Store{
		snap:   snap,
		logger: slog.Default(),
		data:   emptyMapping(),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := snap.Load(ctx)
	if err != nil {
		s.logger.Warn("exemplar snapshot unreadable, starting empty", "error", err)
		return s
	}
	total := 0
	for _, in := range intent.All() {
		if samples, ok := raw[string(in)]; ok {
			s.data[in] = samples
			total += len(samples)
		}
	}
	s.logger.Info("exemplar store loaded", "exemplars", total)
	return s
}

// emptyMapping returns a mapping with an empty entry for every intent.
func emptyMapping() map[intent.Intent][][]float32 {
	m := make(map[intent.Intent][][]float32, intent.Count())
	for _, in := range intent.All() {
		m[in] = nil
	}
	return m
}

// Add appends an embedding to the intent's exemplar list and persists
// the full mapping.
//
// Labels outside the closed enumeration are rejected with
// ErrInvalidIntent and cause no mutation. A persistence failure does not
// fail the Add: the exemplar is live in memory, the failure is logged,
// and the next successful save covers it.
func (s *Store) Add(ctx context.Context, in intent.Intent, embedding []float32) error {
	if !intent.Valid(in) {
		return ErrInvalidIntent
	}

	cp := make([]float32, len(embedding))
	copy(cp, embedding)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.data[in] = append(s.data[in], cp)
	count := len(s.data[in])
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.logger.Info("exemplar added", "intent", in, "samples", count)
	s.persist(ctx, snapshot)
	return nil
}

// Clear removes all exemplars for an intent and persists the result.
func (s *Store) Clear(ctx context.Context, in intent.Intent) error {
	if !intent.Valid(in) {
		return ErrInvalidIntent
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.data[in] = nil
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.logger.Info("exemplars cleared", "intent", in)
	s.persist(ctx, snapshot)
	return nil
}

// persist saves a snapshot, recording but not propagating failures.
// Callers must hold saveMu and must not hold mu.
func (s *Store) persist(ctx context.Context, snapshot map[string][][]float32) {
	err := s.snap.Save(ctx, snapshot)

	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("exemplar snapshot save failed, in-memory state stays authoritative", "error", err)
	}
}

// copyLocked builds a label-keyed copy of the mapping for persistence.
// Exemplar slices are shared, not copied: they are append-only and their
// contents are never mutated after Add.
func (s *Store) copyLocked() map[string][][]float32 {
	out := make(map[string][][]float32, len(s.data))
	for in, samples := range s.data {
		cp := make([][]float32, len(samples))
		copy(cp, samples)
		out[string(in)] = cp
	}
	return out
}

// Exemplars returns a consistent copy of the full mapping for matching.
// The outer structures are copies; the embedding vectors are shared and
// must be treated as read-only.
func (s *Store) Exemplars() map[intent.Intent][][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[intent.Intent][][]float32, len(s.data))
	for in, samples := range s.data {
		cp := make([][]float32, len(samples))
		copy(cp, samples)
		out[in] = cp
	}
	return out
}

// Stats returns the exemplar count per intent. Every intent of the
// enumeration is present, possibly with a zero count.
func (s *Store) Stats() map[intent.Intent]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[intent.Intent]int, len(s.data))
	for in, samples := range s.data {
		out[in] = len(samples)
	}
	return out
}

// Intents returns the closed enumeration in stable order.
func (s *Store) Intents() []intent.Intent {
	return intent.All()
}

// Err returns the error from the most recent snapshot save, or nil if
// the last save succeeded. Exposed for health reporting.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveErr
}

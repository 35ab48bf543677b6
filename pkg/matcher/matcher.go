// Package matcher classifies a query embedding against stored per-intent
// exemplars using cosine similarity.
//
// Each intent's score is a reduction over the similarities between the
// query and every exemplar stored for that intent. The reduction is a
// pluggable [Scorer]; the default is the arithmetic mean, which rewards
// intents whose exemplars are internally consistent rather than the
// single closest outlier.
package matcher

import (
	"math"
	"sort"

	"github.com/vozaid/vozaid/pkg/intent"
)

// Scorer reduces a non-empty list of per-exemplar similarities to a
// single intent score.
type Scorer interface {
	Score(sims []float64) float64
}

// MeanScorer scores an intent by the arithmetic mean of its exemplar
// similarities. This is the default policy.
type MeanScorer struct{}

func (MeanScorer) Score(sims []float64) float64 {
	var sum float64
	for _, s := range sims {
		sum += s
	}
	return sum / float64(len(sims))
}

// MaxScorer scores an intent by its single closest exemplar.
//
// Provided as an alternative policy only. It is not the default because
// it changes confidence calibration: a single confirmed outlier can
// dominate an intent's score.
type MaxScorer struct{}

func (MaxScorer) Score(sims []float64) float64 {
	best := sims[0]
	for _, s := range sims[1:] {
		if s > best {
			best = s
		}
	}
	return best
}

// Prediction is the result of matching one query embedding.
type Prediction struct {
	// Intent is the best-scoring intent, or [intent.Unknown] when no
	// intent has any stored exemplar (cold start).
	Intent intent.Intent

	// Confidence is the best intent's raw score in [0, 1]. Rounding and
	// presentation policy belong to the caller.
	Confidence float64

	// Alternatives are the next-best intent labels (at most two), in
	// descending score order. On cold start these are the first three
	// intents of the enumeration.
	Alternatives []intent.Intent
}

// maxAlternatives is the number of runner-up intents reported.
const maxAlternatives = 2

// Matcher predicts intents from embeddings.
type Matcher struct {
	scorer Scorer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithScorer sets the score reduction policy (default [MeanScorer]).
func WithScorer(s Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// New creates a Matcher with the given options.
func New(opts ...Option) *Matcher {
	m := &Matcher{scorer: MeanScorer{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Predict scores the query against every intent with at least one stored
// exemplar and returns the ranked decision.
//
// When no intent has any exemplar, it returns the cold-start fallback:
// Unknown with confidence 0 and the first three intents of the
// enumeration as alternatives.
//
// Ties are broken by enumeration order: the first-seen intent wins. The
// ranking is therefore deterministic for identical inputs.
func (m *Matcher) Predict(query []float32, exemplars map[intent.Intent][][]float32) Prediction {
	type scored struct {
		in    intent.Intent
		score float64
	}

	// Walk the enumeration, not the map, so tie-breaks are stable.
	var scores []scored
	for _, in := range intent.All() {
		samples := exemplars[in]
		if len(samples) == 0 {
			continue
		}
		sims := make([]float64, len(samples))
		for i, sample := range samples {
			sims[i] = Cosine(query, sample)
		}
		scores = append(scores, scored{in: in, score: m.scorer.Score(sims)})
	}

	if len(scores) == 0 {
		return Prediction{
			Intent:       intent.Unknown,
			Confidence:   0,
			Alternatives: intent.All()[:3],
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	var alts []intent.Intent
	for _, s := range scores[1:] {
		if len(alts) == maxAlternatives {
			break
		}
		alts = append(alts, s.in)
	}

	return Prediction{
		Intent:       scores[0].in,
		Confidence:   scores[0].score,
		Alternatives: alts,
	}
}

// Cosine computes the cosine similarity of two vectors: the dot product
// divided by the product of their norms.
//
// Returns 0 when either vector has zero norm or when the dimensions do
// not match; it never divides by zero and never panics.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package inference

import (
	"context"
	"hash/fnv"
	"math"
)

// Fake is a deterministic Engine for tests and offline use.
//
// It derives the embedding from a hash of the audio bytes, so identical
// clips always map to identical unit vectors and different clips map to
// effectively orthogonal ones. That makes learning-loop behavior
// reproducible without a model endpoint.
type Fake struct {
	// Dimensions is the embedding size (default 768).
	Dimensions int

	// Transcription, if set, is returned verbatim on every call.
	Transcription string

	// Model is the reported model identifier (default "fake").
	Model string

	// Err, if set, is returned on every call instead of a result.
	Err error
}

func (f *Fake) Infer(_ context.Context, audio []byte) (*Result, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	dims := f.Dimensions
	if dims <= 0 {
		dims = 768
	}
	model := f.Model
	if model == "" {
		model = "fake"
	}

	return &Result{
		Transcription: f.Transcription,
		Embedding:     hashEmbedding(audio, dims),
		Model:         model,
	}, nil
}

// hashEmbedding expands a 64-bit hash of data into a unit vector using a
// linear congruential generator.
func hashEmbedding(data []byte, dims int) []float32 {
	h := fnv.New64a()
	h.Write(data)
	seed := h.Sum64()

	vec := make([]float32, dims)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float32(int64(seed)) / float32(math.MaxInt64)
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

package inference_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vozaid/vozaid/pkg/inference"
)

func TestFakeDeterministic(t *testing.T) {
	f := &inference.Fake{}
	ctx := context.Background()

	a, err := f.Infer(ctx, []byte("clip one"))
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	b, err := f.Infer(ctx, []byte("clip one"))
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}

	if len(a.Embedding) != 768 {
		t.Fatalf("embedding dims = %d, want 768", len(a.Embedding))
	}
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("embeddings for identical audio differ at dim %d", i)
		}
	}
}

func TestFakeDistinctInputs(t *testing.T) {
	f := &inference.Fake{Dimensions: 16}
	ctx := context.Background()

	a, _ := f.Infer(ctx, []byte("water"))
	b, _ := f.Infer(ctx, []byte("help"))

	same := true
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different audio produced identical embeddings")
	}
}

func TestFakeUnitNorm(t *testing.T) {
	f := &inference.Fake{Dimensions: 32}
	result, _ := f.Infer(context.Background(), []byte("anything"))

	var norm float64
	for _, v := range result.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
		t.Fatalf("embedding norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestFakeErr(t *testing.T) {
	sentinel := errors.New("down")
	f := &inference.Fake{Err: sentinel}

	_, err := f.Infer(context.Background(), []byte("x"))
	if !errors.Is(err, sentinel) {
		t.Fatalf("Infer = %v, want the configured error", err)
	}
}

func TestFakeDefaults(t *testing.T) {
	f := &inference.Fake{Transcription: "hello"}
	result, err := f.Infer(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if result.Model != "fake" {
		t.Fatalf("Model = %q, want %q", result.Model, "fake")
	}
	if result.Transcription != "hello" {
		t.Fatalf("Transcription = %q, want %q", result.Transcription, "hello")
	}
}

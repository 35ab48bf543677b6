package decision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vozaid/vozaid/pkg/decision"
	"github.com/vozaid/vozaid/pkg/exemplar"
	"github.com/vozaid/vozaid/pkg/intent"
	"github.com/vozaid/vozaid/pkg/matcher"
	"github.com/vozaid/vozaid/pkg/pending"
	"github.com/vozaid/vozaid/pkg/storage"
)

func newService(t *testing.T) *decision.Service {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := exemplar.Open(context.Background(), exemplar.NewFileSnapshot(local, ""))
	return decision.New(store, pending.New(pending.DefaultMaxEntries), matcher.New())
}

// TestLearningLoop walks a fresh service through the full loop: a
// cold-start decide, a corrective confirm, and a second decide that
// benefits from the learned exemplar.
func TestLearningLoop(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	water := []float32{1, 0, 0}

	// Cold start: no exemplars anywhere.
	d1 := svc.Decide(ctx, water)
	if d1.Intent != intent.Unknown {
		t.Fatalf("cold-start intent = %s, want %s", d1.Intent, intent.Unknown)
	}
	if d1.Confidence != 0 {
		t.Fatalf("cold-start confidence = %v, want 0", d1.Confidence)
	}
	if d1.Token == "" {
		t.Fatal("cold-start decision has no token; the embedding must still be stakeable")
	}

	// The user says it was WATER. The prediction was UNKNOWN, so this is
	// a correction, and the corrected label is what gets committed.
	stats, err := svc.Confirm(ctx, d1.Token, intent.Water)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if stats[intent.Water] != 1 {
		t.Fatalf("Stats()[WATER] = %d after confirm, want 1", stats[intent.Water])
	}

	// A similar query now matches WATER with high confidence.
	d2 := svc.Decide(ctx, []float32{0.98, 0.05, 0})
	if d2.Intent != intent.Water {
		t.Fatalf("post-learning intent = %s, want %s", d2.Intent, intent.Water)
	}
	if d2.Confidence < 0.9 {
		t.Fatalf("post-learning confidence = %v, want > 0.9", d2.Confidence)
	}
}

func TestDecideWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, emb := range [][]float32{nil, {}} {
		d := svc.Decide(ctx, emb)
		if d.Intent != intent.Unknown {
			t.Fatalf("Decide(no embedding) intent = %s, want %s", d.Intent, intent.Unknown)
		}
		if d.Token != "" {
			t.Fatal("Decide(no embedding) issued a token; nothing was staked")
		}
		if len(d.Alternatives) != 3 {
			t.Fatalf("Decide(no embedding) alternatives = %v, want 3 suggestions", d.Alternatives)
		}
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.Confirm(context.Background(), "nope", intent.Water)
	if !errors.Is(err, decision.ErrTokenNotFound) {
		t.Fatalf("Confirm(unknown token) = %v, want ErrTokenNotFound", err)
	}
}

func TestConfirmIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	d := svc.Decide(ctx, []float32{1, 2})
	if _, err := svc.Confirm(ctx, d.Token, intent.Pain); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	if _, err := svc.Confirm(ctx, d.Token, intent.Pain); !errors.Is(err, decision.ErrTokenNotFound) {
		t.Fatalf("second Confirm = %v, want ErrTokenNotFound", err)
	}
	if got := svc.Stats()[intent.Pain]; got != 1 {
		t.Fatalf("Stats()[PAIN] = %d after double confirm, want 1", got)
	}
}

func TestConfirmInvalidLabelKeepsTokenAlive(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	d := svc.Decide(ctx, []float32{1})

	_, err := svc.Confirm(ctx, d.Token, "SNACKS")
	if !errors.Is(err, decision.ErrInvalidIntent) {
		t.Fatalf("Confirm(bad label) = %v, want ErrInvalidIntent", err)
	}

	// The token survives the failed attempt.
	if _, err := svc.Confirm(ctx, d.Token, intent.Help); err != nil {
		t.Fatalf("Confirm retry after bad label: %v", err)
	}
}

func TestConfirmUnknownLabelRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	d := svc.Decide(ctx, []float32{1})
	if _, err := svc.Confirm(ctx, d.Token, intent.Unknown); !errors.Is(err, decision.ErrInvalidIntent) {
		t.Fatalf("Confirm(UNKNOWN) = %v, want ErrInvalidIntent", err)
	}
}

func TestDecideDoesNotLearn(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	// Many unconfirmed decisions must not influence matching.
	for i := 0; i < 20; i++ {
		svc.Decide(ctx, []float32{1, 0})
	}
	for in, n := range svc.Stats() {
		if n != 0 {
			t.Fatalf("Stats()[%s] = %d with no confirms, want 0", in, n)
		}
	}
}

func TestIntents(t *testing.T) {
	svc := newService(t)
	got := svc.Intents()
	want := intent.All()
	if len(got) != len(want) {
		t.Fatalf("Intents() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Intents()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExpiredTokenAfterEviction(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := exemplar.Open(ctx, exemplar.NewFileSnapshot(local, ""))
	svc := decision.New(store, pending.New(2), matcher.New())

	d1 := svc.Decide(ctx, []float32{1})
	svc.Decide(ctx, []float32{2})
	svc.Decide(ctx, []float32{3}) // evicts d1's stake

	if _, err := svc.Confirm(ctx, d1.Token, intent.Water); !errors.Is(err, decision.ErrTokenNotFound) {
		t.Fatalf("Confirm(evicted token) = %v, want ErrTokenNotFound", err)
	}
}

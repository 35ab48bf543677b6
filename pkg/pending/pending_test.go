package pending_test

import (
	"testing"

	"github.com/vozaid/vozaid/pkg/pending"
)

func TestStakeAndTake(t *testing.T) {
	c := pending.New(10)

	emb := []float32{0.1, 0.2, 0.3}
	token := c.Stake(emb)
	if token == "" {
		t.Fatal("Stake returned an empty token")
	}

	got, ok := c.Take(token)
	if !ok {
		t.Fatalf("Take(%s) = false, want true", token)
	}
	if len(got) != len(emb) {
		t.Fatalf("Take returned %d dims, want %d", len(got), len(emb))
	}
	for i := range emb {
		if got[i] != emb[i] {
			t.Fatalf("Take()[%d] = %v, want %v", i, got[i], emb[i])
		}
	}
}

func TestTakeIsSingleUse(t *testing.T) {
	c := pending.New(10)

	token := c.Stake([]float32{1})
	if _, ok := c.Take(token); !ok {
		t.Fatal("first Take = false, want true")
	}
	if _, ok := c.Take(token); ok {
		t.Fatal("second Take = true, want false")
	}
}

func TestTakeUnknownToken(t *testing.T) {
	c := pending.New(10)
	if _, ok := c.Take("no-such-token"); ok {
		t.Fatal("Take(unknown) = true, want false")
	}
}

func TestStakeCopiesEmbedding(t *testing.T) {
	c := pending.New(10)

	emb := []float32{1, 2, 3}
	token := c.Stake(emb)
	emb[0] = 99

	got, _ := c.Take(token)
	if got[0] != 1 {
		t.Fatalf("staked embedding aliased the caller's slice: got %v", got[0])
	}
}

func TestTokensAreUnique(t *testing.T) {
	c := pending.New(200)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := c.Stake([]float32{float32(i)})
		if seen[token] {
			t.Fatalf("token %s issued twice", token)
		}
		seen[token] = true
	}
}

func TestFIFOEviction(t *testing.T) {
	c := pending.New(100)

	tokens := make([]string, 0, 101)
	for i := 0; i < 101; i++ {
		tokens = append(tokens, c.Stake([]float32{float32(i)}))
	}

	if got := c.Len(); got != 100 {
		t.Fatalf("Len() = %d after 101 stakes, want 100", got)
	}

	// The first stake is gone, everything else survives.
	if _, ok := c.Take(tokens[0]); ok {
		t.Fatal("oldest token survived eviction")
	}
	for _, token := range tokens[1:] {
		if _, ok := c.Take(token); !ok {
			t.Fatalf("token %s was evicted, want only the oldest gone", token)
		}
	}
}

func TestEvictionSkipsTakenTokens(t *testing.T) {
	c := pending.New(3)

	t1 := c.Stake([]float32{1})
	t2 := c.Stake([]float32{2})
	t3 := c.Stake([]float32{3})

	// Consume the oldest, then overflow. The eviction must fall through
	// the already-taken t1 and drop t2, leaving t3 and t4 live.
	if _, ok := c.Take(t1); !ok {
		t.Fatal("Take(t1) = false, want true")
	}
	t4 := c.Stake([]float32{4})
	t5 := c.Stake([]float32{5})

	if _, ok := c.Take(t2); ok {
		t.Fatal("t2 survived, want it evicted as the oldest live entry")
	}
	for i, token := range []string{t3, t4, t5} {
		if _, ok := c.Take(token); !ok {
			t.Fatalf("token %d evicted, want it live", i+3)
		}
	}
}

func TestDefaultBound(t *testing.T) {
	c := pending.New(0)
	for i := 0; i < pending.DefaultMaxEntries+5; i++ {
		c.Stake([]float32{float32(i)})
	}
	if got := c.Len(); got != pending.DefaultMaxEntries {
		t.Fatalf("Len() = %d, want %d", got, pending.DefaultMaxEntries)
	}
}

func TestConcurrentStakeAndTake(t *testing.T) {
	c := pending.New(50)

	done := make(chan string, 100)
	for i := 0; i < 100; i++ {
		go func(i int) {
			done <- c.Stake([]float32{float32(i)})
		}(i)
	}
	for i := 0; i < 100; i++ {
		token := <-done
		// May already be evicted under contention; both outcomes are fine,
		// the test is for race-freedom under -race.
		c.Take(token)
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("Len() = %d after taking everything, want 0", got)
	}
}

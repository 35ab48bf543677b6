package pending

import "testing"

// Consumed tokens must not accumulate in the eviction queue: a server
// where most stakes are confirmed never overflows the bound, so the
// queue has to be trimmed on the take path too.
func TestTakeCompactsQueue(t *testing.T) {
	const max = 100
	c := New(max)

	for i := 0; i < 10_000; i++ {
		token := c.Stake([]float32{float32(i)})
		if _, ok := c.Take(token); !ok {
			t.Fatalf("Take on cycle %d = false, want true", i)
		}
	}

	if got := c.Len(); got != 0 {
		t.Fatalf("Len() = %d after taking every stake, want 0", got)
	}
	if got := len(c.order); got > 2*max {
		t.Fatalf("eviction queue holds %d tokens, want at most %d", got, 2*max)
	}
}

func TestCompactionKeepsFIFOOrder(t *testing.T) {
	c := New(3)

	// Build up dead tokens past the compaction threshold, with two live
	// stakes interleaved among them.
	t1 := c.Stake([]float32{1})
	for i := 0; i < 10; i++ {
		token := c.Stake([]float32{float32(i)})
		c.Take(token)
	}
	t2 := c.Stake([]float32{2})

	// Overflow: t1 is the oldest live entry and must still be the one
	// evicted first.
	c.Stake([]float32{3})
	c.Stake([]float32{4})

	if _, ok := c.Take(t1); ok {
		t.Fatal("t1 survived, want it evicted as the oldest live entry")
	}
	if _, ok := c.Take(t2); !ok {
		t.Fatal("t2 evicted, want it live")
	}
}

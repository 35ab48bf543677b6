package intent_test

import (
	"testing"

	"github.com/vozaid/vozaid/pkg/intent"
)

func TestAllStableOrder(t *testing.T) {
	want := []intent.Intent{
		intent.Help, intent.Water, intent.Yes, intent.No, intent.Pain,
		intent.Emergency, intent.Bathroom, intent.Tired, intent.Cold, intent.Hot,
	}
	got := intent.All()
	if len(got) != len(want) {
		t.Fatalf("All() returned %d intents, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("All()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// Mutating the returned slice must not affect the enumeration.
	got[0] = "MUTATED"
	if intent.All()[0] != intent.Help {
		t.Fatal("All() returned a shared slice")
	}
}

func TestValid(t *testing.T) {
	for _, in := range intent.All() {
		if !intent.Valid(in) {
			t.Fatalf("Valid(%s) = false, want true", in)
		}
	}
	for _, in := range []intent.Intent{intent.Unknown, "", "water", "SNACKS"} {
		if intent.Valid(in) {
			t.Fatalf("Valid(%q) = true, want false", in)
		}
	}
}

func TestParse(t *testing.T) {
	in, err := intent.Parse("WATER")
	if err != nil {
		t.Fatalf("Parse(WATER): %v", err)
	}
	if in != intent.Water {
		t.Fatalf("Parse(WATER) = %s, want %s", in, intent.Water)
	}

	if _, err := intent.Parse("UNKNOWN"); err == nil {
		t.Fatal("Parse(UNKNOWN) succeeded, want error")
	}
}

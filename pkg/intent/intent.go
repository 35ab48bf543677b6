// Package intent defines the closed set of patient-need intents the
// system can detect.
//
// The enumeration is fixed at compile time and is not user-extensible at
// runtime. Its order is significant: cold-start fallbacks and score
// tie-breaks are both resolved by enumeration order, so the order must
// stay stable across releases.
package intent

import "fmt"

// Intent is one label from the closed set of patient-need categories.
type Intent string

// The closed enumeration. These cover the needs a stroke/aphasia patient
// most commonly has to communicate with short utterances.
const (
	Help      Intent = "HELP"      // general assistance
	Water     Intent = "WATER"     // thirst/hydration
	Yes       Intent = "YES"       // affirmative
	No        Intent = "NO"        // negative
	Pain      Intent = "PAIN"      // discomfort
	Emergency Intent = "EMERGENCY" // urgent medical
	Bathroom  Intent = "BATHROOM"  // toileting
	Tired     Intent = "TIRED"     // rest/sleep
	Cold      Intent = "COLD"      // temperature - cold
	Hot       Intent = "HOT"       // temperature - hot
)

// Unknown is the sentinel returned when no exemplars exist for any intent
// (cold start). It is not part of the closed enumeration and cannot be
// confirmed or stored.
const Unknown Intent = "UNKNOWN"

// all is the enumeration in its canonical order.
var all = []Intent{Help, Water, Yes, No, Pain, Emergency, Bathroom, Tired, Cold, Hot}

// valid is the membership set derived from all.
var valid = func() map[Intent]bool {
	m := make(map[Intent]bool, len(all))
	for _, in := range all {
		m[in] = true
	}
	return m
}()

// All returns the closed enumeration in stable order.
// The returned slice is a copy; callers may modify it freely.
func All() []Intent {
	out := make([]Intent, len(all))
	copy(out, all)
	return out
}

// Count returns the number of intents in the closed enumeration.
func Count() int {
	return len(all)
}

// Valid reports whether label is a member of the closed enumeration.
// Unknown is not a valid member.
func Valid(label Intent) bool {
	return valid[label]
}

// Parse converts a raw label to an Intent, rejecting anything outside
// the closed enumeration.
func Parse(label string) (Intent, error) {
	in := Intent(label)
	if !Valid(in) {
		return "", fmt.Errorf("intent: unknown label %q", label)
	}
	return in, nil
}

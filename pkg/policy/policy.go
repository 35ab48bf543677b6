// Package policy turns a tentative decision into presentation guidance
// for the frontend: a status label, the next action the UI should take,
// and the buttons to show the patient.
//
// The assessment is a pure function of (intent, confidence). It carries
// no state and is injected into the route layer, so deployments can tune
// thresholds or swap the whole policy without touching the decision
// core.
package policy

import "github.com/vozaid/vozaid/pkg/intent"

// Status labels reported to the frontend.
const (
	StatusDetected  = "detected"  // confident match, ask for a simple confirm
	StatusUncertain = "uncertain" // plausible match, offer alternatives
	StatusUnclear   = "unclear"   // no usable match, ask to try again
)

// Next actions the frontend should take.
const (
	ActionConfirm = "confirm"            // show yes/no confirmation
	ActionChoose  = "choose_alternative" // show candidate buttons
	ActionRetry   = "retry"              // prompt to speak again
)

// Default confidence thresholds.
const (
	HighConfidence = 0.70
	LowConfidence  = 0.40
)

// Assessment is the presentation guidance for one decision.
type Assessment struct {
	// Status is one of the Status* labels.
	Status string

	// NextAction is one of the Action* labels.
	NextAction string

	// Options are the button labels to present, in display order.
	Options []string
}

// Func maps a tentative (intent, confidence) pair to an Assessment.
type Func func(in intent.Intent, confidence float64, alternatives []intent.Intent) Assessment

// Assess is the default policy.
//
// High-confidence matches get a yes/no confirm. Mid-confidence matches
// present the best guess alongside its alternatives. Everything else —
// including the Unknown cold-start sentinel — asks the patient to try
// again while still listing a few intents as a manual fallback.
func Assess(in intent.Intent, confidence float64, alternatives []intent.Intent) Assessment {
	if in != intent.Unknown && confidence >= HighConfidence {
		return Assessment{
			Status:     StatusDetected,
			NextAction: ActionConfirm,
			Options:    []string{string(intent.Yes), string(intent.No)},
		}
	}

	if in != intent.Unknown && confidence >= LowConfidence {
		options := make([]string, 0, 1+len(alternatives))
		options = append(options, string(in))
		for _, alt := range alternatives {
			options = append(options, string(alt))
		}
		return Assessment{
			Status:     StatusUncertain,
			NextAction: ActionChoose,
			Options:    options,
		}
	}

	options := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		options = append(options, string(alt))
	}
	return Assessment{
		Status:     StatusUnclear,
		NextAction: ActionRetry,
		Options:    options,
	}
}

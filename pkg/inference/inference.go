// Package inference talks to the remote speech-intent model.
//
// The model is an opaque collaborator: raw audio bytes go in, an
// optional transcription and an optional fixed-length embedding come
// back. The core treats a missing embedding as "this query cannot
// participate in the learning loop", not as a failure.
//
// Failures are classified into three kinds — timeout, connection, and
// server error — so the route layer can map them to the right HTTP
// status. The client never retries; retry policy, if any, belongs to the
// caller.
package inference

import (
	"context"
	"errors"
	"fmt"
)

// Result is the output of one inference call.
type Result struct {
	// Transcription is the recognized text, if the model produced one.
	Transcription string `json:"transcription,omitempty"`

	// Embedding is the utterance's fixed-length vector, if the model
	// produced one (e.g. 768 dimensions for HuBERT-style models).
	Embedding []float32 `json:"embedding,omitempty"`

	// Model identifies which upstream model served the request.
	Model string `json:"model_used,omitempty"`
}

// Engine is the interface to a speech-intent model.
type Engine interface {
	// Infer processes raw audio bytes. A nil error with an empty
	// Embedding is a valid outcome.
	Infer(ctx context.Context, audio []byte) (*Result, error)
}

// Kind classifies an upstream failure.
type Kind int

const (
	// KindServer is a model-side failure (5xx or malformed response).
	KindServer Kind = iota

	// KindTimeout means the request exceeded its deadline.
	KindTimeout

	// KindConnection means the endpoint could not be reached.
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified upstream failure.
type Error struct {
	// Kind is the failure classification.
	Kind Kind

	// Status is the HTTP status of the response, when one was received.
	Status int

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("inference: %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError attempts to interpret err as a classified inference failure.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTimeout reports whether err is a classified timeout failure.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindTimeout
}

// IsConnection reports whether err is a classified connection failure.
func IsConnection(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindConnection
}

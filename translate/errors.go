package translate

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned by a Client when the endpoint answered
// but the reply has no usable assistant message.
var ErrMalformedResponse = errors.New("malformed chat completion response")

// Reason classifies a per-unit translation failure.
type Reason string

const (
	ReasonNoClient  Reason = "no-client"
	ReasonRequest   Reason = "request"
	ReasonAPI       Reason = "api"
	ReasonMalformed Reason = "malformed-response"
	ReasonPanic     Reason = "panic"
	ReasonCanceled  Reason = "canceled"
)

// TranslationError is the failure of a single unit. The unit keeps its
// original text.
type TranslationError struct {
	UnitID string
	Reason Reason
	Err    error
}

func (e *TranslationError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("translation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("translation of %s failed (%s): %v", e.UnitID, e.Reason, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ParseError means a document could not be read or parsed. It abandons
// that document only.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// WriteError means a translated document could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

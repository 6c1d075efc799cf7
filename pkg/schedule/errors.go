// Package schedule implements the playlist scheduling engine: document
// validation, condition evaluation, per-rule rotation state, and the
// recursive resolver that picks the next screen for every display tick.
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	// KindSchema marks a malformed document shape.
	KindSchema ErrorKind = "schema"
	// KindReference marks a dangling playlist reference.
	KindReference ErrorKind = "reference"
	// KindUnproductiveCycle marks a playlist that can never reach a screen.
	KindUnproductiveCycle ErrorKind = "unproductive_cycle"
	// KindRuleShape marks a rule with missing or invalid fields.
	KindRuleShape ErrorKind = "rule_shape"
)

// ValidationError is a single validation failure with its structural
// location, so a configuration UI can point at the offending element.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Path, e.Message)
}

// ValidationErrors collects every violation found in a document. The
// validator never truncates to the first failure.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

// AsValidationErrors unwraps err into ValidationErrors when possible.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}

	return nil, false
}

// ErrResolutionLimit is the defensive runtime trip on unexpectedly long
// skip chains. Valid documents never hit it; treat it as a bug report.
var ErrResolutionLimit = errors.New("resolution exceeded structural step budget")

// ErrNoEligibleStep means every step in the document was skipped this
// tick, e.g. all conditions closed and all screens unavailable. The
// control loop logs it and retries on the next tick.
var ErrNoEligibleStep = errors.New("no step is eligible this tick")

package calculator

import (
	"fmt"
	"strings"

	"github.com/Simplici0/movequote/internal/pricing"
)

// FieldError is a single missing or invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StepValidationError is returned when a step cannot be completed because
// required fields are missing or out of range. The state is left unchanged.
type StepValidationError struct {
	Step   StepID       `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *StepValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("step %s: %s", e.Step, strings.Join(parts, "; "))
}

// ManualOverrideBoundsError reports a van/mover override outside the
// resourcing bounds.
type ManualOverrideBoundsError = pricing.OverrideError

// InapplicableStepError signals a sequencing bug in the caller: completing
// a step that is not current, is skipped for this state, or is terminal.
type InapplicableStepError struct {
	Step    StepID `json:"step"`
	Current StepID `json:"current"`
	Reason  string `json:"reason"`
}

func (e *InapplicableStepError) Error() string {
	return fmt.Sprintf("step %s is not applicable (current %s): %s", e.Step, e.Current, e.Reason)
}

// fieldErrors accumulates field errors for one step.
type fieldErrors []FieldError

func (fe *fieldErrors) add(field, format string, args ...any) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fe fieldErrors) err(step StepID) error {
	if len(fe) == 0 {
		return nil
	}
	return &StepValidationError{Step: step, Fields: fe}
}

package req

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beconnected/beconnected"
)

// A ValidationError is an issue with a concrete value not matching the rule set on its field.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
}

// ValidationErrors is a set of ValidationError.
//
// It wraps beconnected.ErrNotValid.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		got := fmt.Sprint(err.Got)
		if isSecret(err.Field) {
			got = beconnected.LogMaskVal
		}

		msgs[i] = fmt.Sprintf("field=%q rule=%q got=%q", err.Field, err.Rule, got)
	}

	return strings.Join(msgs, "\n")
}

// Fields lists the fields failing validation, in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, err := range v {
		fields[i] = err.Field
	}

	return fields
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	errs := struct {
		E []ValidationError `json:"validationErrors,omitempty"`
	}{E: make([]ValidationError, len(v))}

	for i, err := range v {
		if isSecret(err.Field) {
			err.Got = beconnected.LogMaskVal
		}

		errs.E[i] = err
	}

	return json.Marshal(errs)
}

func (ValidationErrors) Unwrap() error { return beconnected.ErrNotValid }

// isSecret asserts whether the value of field must never be echoed back.
func isSecret(field string) bool {
	return strings.Contains(strings.ToLower(field), "password")
}

// Package prompt describes the questions the generator asks and the Asker
// interface that answers them.
//
// The planner only ever talks to an Asker. The interactive terminal asker
// lives in cmd/kafkagen; Scripted replays answers resolved ahead of time.
package prompt

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Kind selects how a question is presented and answered.
type Kind int

const (
	// Select picks exactly one choice.
	Select Kind = iota
	// MultiSelect picks any number of choices (checkboxes).
	MultiSelect
	// Number reads an integer typed by the operator.
	Number
	// Confirm is a yes/no question.
	Confirm
)

func (k Kind) String() string {
	switch k {
	case Select:
		return "select"
	case MultiSelect:
		return "multiselect"
	case Number:
		return "number"
	case Confirm:
		return "confirm"
	}
	return "unknown"
}

// Choice is one selectable option.
type Choice struct {
	Value string
	Label string
}

// Question is a single prompt.
type Question struct {
	Key     string
	Prompt  string
	Kind    Kind
	Choices []Choice
	// Default is the preselected value: a choice value for Select, a number
	// for Number, "true"/"false" for Confirm. MultiSelect ignores it.
	Default string
	// Hint is shown when a previous answer to the same question was rejected.
	Hint string
}

// Answer carries the operator's response. Which field is meaningful depends
// on the question Kind.
type Answer struct {
	Selected []string // Select (one value) and MultiSelect
	Text     string   // Number
	Yes      bool     // Confirm
}

// Asker answers questions. Implementations block until the operator answers
// or ctx is done.
type Asker interface {
	Ask(ctx context.Context, q Question) (Answer, error)
}

var (
	// ErrCancelled is returned when the operator aborts the session.
	ErrCancelled = errors.New("prompt cancelled")
	// ErrScriptExhausted is returned when a scripted asker has no answer left
	// for a question.
	ErrScriptExhausted = errors.New("no scripted answer left")
)

// Label returns the label of the choice with the given value, or the value
// itself.
func (q Question) Label(value string) string {
	for _, c := range q.Choices {
		if c.Value == value {
			if c.Label != "" {
				return c.Label
			}
			return c.Value
		}
	}
	return value
}

// HasChoice reports whether value is one of the question's choices.
func (q Question) HasChoice(value string) bool {
	for _, c := range q.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

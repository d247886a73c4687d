package kafkaconf

import (
	"fmt"
)

// ConfigParseError reports input that is not a readable configuration. It is
// recoverable: Load substitutes the empty document.
type ConfigParseError struct {
	Path string // empty when parsing bytes without a file
	Err  error
}

func (e *ConfigParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse config: %v", e.Err)
	}
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// DuplicateComponentError reports an attempt to add a component the entity
// already holds. Reaching it means the planner guard failed.
type DuplicateComponentError struct {
	EntityKey string
	Component Component
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("%s already registered for entity %q", e.Component, e.EntityKey)
}

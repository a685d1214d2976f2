package domain

import "fmt"

// StructuralError reports an invalid strategy definition. It names the
// offending leg (zero-based; -1 when the problem is not tied to one leg) and
// field so callers can point at the exact input that was wrong.
type StructuralError struct {
	LegIndex int
	Field    string
	Reason   string
}

func (e *StructuralError) Error() string {
	if e.LegIndex < 0 {
		return fmt.Sprintf("invalid strategy: %s", e.Reason)
	}
	return fmt.Sprintf("invalid leg %d (%s): %s", e.LegIndex+1, e.Field, e.Reason)
}

// NewStructuralError builds a structural error for one leg field
func NewStructuralError(legIndex int, field, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		LegIndex: legIndex,
		Field:    field,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// NewStrategyError builds a structural error not tied to a single leg,
// such as a violated strike ordering between legs.
func NewStrategyError(format string, args ...interface{}) *StructuralError {
	return &StructuralError{LegIndex: -1, Reason: fmt.Sprintf(format, args...)}
}

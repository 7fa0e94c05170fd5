package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// ERRORS
// ============================================================================
// ConfigurationError: bad input, raised before any rendering. Callers fix the
//                     input; retrying unchanged input never helps.
// RenderError:        the backend failed on a well-formed config. Only the
//                     render Guard sees these; they never reach the host.
// ============================================================================

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("chart configuration error")
	// ErrRender matches every *RenderError via errors.Is.
	ErrRender = errors.New("chart render error")
)

// ConfigurationError reports an invalid chart type, axis assignment or directive.
type ConfigurationError struct {
	Field  string // config path, e.g. "axis.y" or "barSortBy"
	Value  any    // offending value (may be nil)
	Reason string
}

func (e *ConfigurationError) Error() string {
	parts := []string{"invalid chart configuration"}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

// Is lets errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func newUnknownChartType(t ChartType) *ConfigurationError {
	return &ConfigurationError{
		Field:  "selectedChartType",
		Value:  string(t),
		Reason: "unsupported chart type",
	}
}

func newMissingColumn(field, column string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Value:  column,
		Reason: "column not present in result metadata",
	}
}

func newMissingAxis(field string, t ChartType) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf("required for %s charts", t),
	}
}

func newInvalidDirective(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// RenderError wraps a failure raised by the rendering backend.
type RenderError struct {
	ChartType ChartType
	Err       error // returned error, or nil when the backend panicked
	Panic     any   // recovered panic value, if any
}

func (e *RenderError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("render %s chart: %v", e.ChartType, e.Err)
	case e.Panic != nil:
		return fmt.Sprintf("render %s chart: panic: %v", e.ChartType, e.Panic)
	default:
		return fmt.Sprintf("render %s chart: unknown failure", e.ChartType)
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRender) succeed.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

package ot

import (
	"errors"
	"fmt"
)

// Sentinel errors for font decoding and encoding.
var (
	// ErrUnsupportedFormat flags a table or sub-table format we do not know how to handle.
	ErrUnsupportedFormat = errors.New("unsupported font format")
	// ErrMissingTable flags the absence of a table required for editing.
	ErrMissingTable = errors.New("required font table missing")
	// ErrOffsetOverflow flags an offset which does not fit into its binary field.
	ErrOffsetOverflow = errors.New("offset overflow")
)

// ErrorSeverity represents the severity level of a font error.
type ErrorSeverity int

const (
	// SeverityCritical indicates an error that makes the font unusable for editing.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect the output font.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered while decoding or encoding a font table.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "GSUB", "glyf")
	Section  string        // Specific section within the table (e.g., "LookupType6", "ScriptList")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the table where the error occurred (0 if unknown)
	Err      error         // Underlying cause, if any
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap returns the underlying cause.
func (e FontError) Unwrap() error {
	return e.Err
}

// Errorf creates a critical FontError for a table section, wrapping cause.
func Errorf(table Tag, section string, cause error, format string, args ...any) error {
	return FontError{
		Table:    table,
		Section:  section,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
		Err:      cause,
	}
}

// FontWarning represents a non-critical issue encountered while handling a font.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// ErrorCollector accumulates errors and warnings while a font is processed.
// Clients inspect it after an operation completes.
type ErrorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// AddError records an error.
func (ec *ErrorCollector) AddError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	tracer().Debugf("%s/%s: %s", table, section, issue)
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

// AddWarning records a warning.
func (ec *ErrorCollector) AddWarning(table Tag, issue string, offset uint32) {
	tracer().Debugf("warning %s: %s", table, issue)
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// Errors returns all errors recorded so far.
func (ec *ErrorCollector) Errors() []FontError {
	return ec.errors
}

// Warnings returns all warnings recorded so far.
func (ec *ErrorCollector) Warnings() []FontWarning {
	return ec.warnings
}

// HasCriticalErrors returns true if any critical errors have been recorded.
func (ec *ErrorCollector) HasCriticalErrors() bool {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Err returns the first critical error, or nil.
func (ec *ErrorCollector) Err() error {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return err
		}
	}
	return nil
}

package ot

import (
	"errors"
	"testing"
)

// TestErrorSeverity verifies the ErrorSeverity String() method.
func TestErrorSeverity(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		expected string
	}{
		{SeverityCritical, "CRITICAL"},
		{SeverityMajor, "MAJOR"},
		{SeverityMinor, "MINOR"},
		{ErrorSeverity(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.severity.String()
		if result != tt.expected {
			t.Errorf("ErrorSeverity(%d).String() = %q; want %q", tt.severity, result, tt.expected)
		}
	}
}

// TestFontError verifies FontError formatting and unwrapping.
func TestFontError(t *testing.T) {
	err := FontError{
		Table:    T("GSUB"),
		Section:  "LookupType6",
		Issue:    "Buffer too small",
		Severity: SeverityCritical,
		Offset:   1234,
	}
	if got := err.Error(); got != "[CRITICAL] GSUB/LookupType6 at offset 1234: Buffer too small" {
		t.Errorf("unexpected error text %q", got)
	}
	wrapped := Errorf(T("glyf"), "Component", ErrBufferBounds, "glyph %d", 7)
	if !errors.Is(wrapped, ErrBufferBounds) {
		t.Errorf("expected wrapped error to unwrap to ErrBufferBounds")
	}
	if got := wrapped.Error(); got != "[CRITICAL] glyf/Component: glyph 7" {
		t.Errorf("unexpected error text %q", got)
	}
}

func TestErrorCollector(t *testing.T) {
	ec := &ErrorCollector{}
	if ec.Err() != nil || ec.HasCriticalErrors() {
		t.Fatalf("fresh collector should not report errors")
	}
	ec.AddWarning(T("post"), "no glyph names", 0)
	ec.AddError(T("GSUB"), "FeatureParams", "dropped", SeverityMinor, 12)
	if ec.HasCriticalErrors() {
		t.Errorf("minor error reported as critical")
	}
	ec.AddError(T("glyf"), "Glyph", "broken", SeverityCritical, 0)
	if ec.Err() == nil {
		t.Errorf("expected critical error")
	}
	if len(ec.Warnings()) != 1 || len(ec.Errors()) != 2 {
		t.Errorf("expected 1 warning and 2 errors, have %d and %d", len(ec.Warnings()), len(ec.Errors()))
	}
}

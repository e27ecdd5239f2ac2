package output

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      *ExitError
		wantKind Kind
	}{
		{"validation", NewValidationError("invalid version type: \"huge\"", nil), KindValidation},
		{"precondition", NewPreconditionError("working tree is dirty", nil), KindPrecondition},
		{"io", NewIOError("reading package.json", cause), KindIO},
		{"subprocess", NewSubprocessError("git operations failed", cause), KindSubprocess},
		{"usage", NewUsageError("unknown command: deploy"), KindUsage},
		{"internal", NewInternalError("panic", cause), KindInternal},
		{"checks failed", NewChecksFailedError(3), KindChecksFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != ExitFailure {
				t.Errorf("Code = %d, want %d", tt.err.Code, ExitFailure)
			}
			if tt.err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.wantKind)
			}
			if KindOf(tt.err) != tt.wantKind {
				t.Errorf("KindOf() = %q, want %q", KindOf(tt.err), tt.wantKind)
			}
		})
	}
}

func TestExitErrorWrapping(t *testing.T) {
	underlying := errors.New("exit status 128")
	err := NewSubprocessError("git tag failed", underlying)

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
	if err.Error() != "git tag failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "git tag failed")
	}

	wrapped := fmt.Errorf("release: %w", err)
	if KindOf(wrapped) != KindSubprocess {
		t.Errorf("KindOf(wrapped) = %q, want %q", KindOf(wrapped), KindSubprocess)
	}
}

func TestChecksFailedError(t *testing.T) {
	tests := []struct {
		failed int
		want   string
	}{
		{0, "maintenance checks failed"},
		{1, "1 maintenance check failed"},
		{4, "4 maintenance checks failed"},
	}
	for _, tt := range tests {
		err := NewChecksFailedError(tt.failed)
		if err.Error() != tt.want {
			t.Errorf("NewChecksFailedError(%d) = %q, want %q", tt.failed, err.Error(), tt.want)
		}
		if !IsSilent(err) {
			t.Errorf("NewChecksFailedError(%d) should be silent", tt.failed)
		}
	}

	if IsSilent(NewValidationError("x", nil)) {
		t.Error("validation errors should not be silent")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: ExitSuccess},
		{name: "validation", err: NewValidationError("bad input", nil), expected: ExitFailure},
		{name: "wrapped subprocess", err: fmt.Errorf("x: %w", NewSubprocessError("git failed", nil)), expected: ExitFailure},
		{name: "regular error", err: errors.New("some error"), expected: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetExitCode(tt.err)
			if got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestCompileStateTerminal(t *testing.T) {
	tests := []struct {
		state    CompileState
		terminal bool
	}{
		{StateIdle, false},
		{StateLaunching, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateFailed, true},
		{StateTimedOut, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestOutcomeSuccess(t *testing.T) {
	completed := &CompilationOutcome{State: StateCompleted}
	if !completed.Success() {
		t.Error("completed outcome should be a success")
	}
	// A missing PDF does not downgrade a clean exit.
	if !(&CompilationOutcome{State: StateCompleted, PDFCreated: false}).Success() {
		t.Error("missing PDF must not downgrade success")
	}
	for _, state := range []CompileState{StateFailed, StateTimedOut, StateCancelled} {
		if (&CompilationOutcome{State: state}).Success() {
			t.Errorf("state %s should not be a success", state)
		}
	}
}

func TestAppErrorError(t *testing.T) {
	plain := NewAppError(ErrTimeout, "compilation timed out", nil)
	if plain.Error() != "compilation timed out" {
		t.Errorf("Error() = %q", plain.Error())
	}

	detailed := NewAppErrorWithDetails(ErrToolFailed, "conversion failed", "gs: unrecoverable error", nil)
	if detailed.Error() != "conversion failed: gs: unrecoverable error" {
		t.Errorf("Error() = %q", detailed.Error())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewAppError(ErrToolFailed, "latexmk failed", cause)
	if !errors.Is(err, cause) {
		t.Error("AppError should unwrap to its cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", NewAppError(ErrMissingInput, "main.tex not found", nil), ErrMissingInput},
		{"wrapped", fmt.Errorf("stage failed: %w", NewAppError(ErrTimeout, "timed out", nil)), ErrTimeout},
		{"foreign", errors.New("boom"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.expected {
				t.Errorf("CodeOf = %q, want %q", got, tt.expected)
			}
		})
	}
}

package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "validation error",
			err:      Validation("habit name is required"),
			expected: "Error: invalid input: habit name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "habits")
	if got != "Error: failed to load habits" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", errors.New("boom"), nil},
		{"auth", fmt.Errorf("login: %w", ErrAuth), ErrAuth},
		{"validation helper", Validation("weeks out of range"), ErrValidation},
		{"network", fmt.Errorf("get habits: %w", ErrNetwork), ErrNetwork},
		{"divergence", fmt.Errorf("toggle: %w", ErrDivergence), ErrDivergence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}

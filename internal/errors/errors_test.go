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
			name:     "wrapped error",
			err:      errors.New("failed to persist chains: disk full"),
			expected: "Error: failed to persist chains: disk full",
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
	tests := []struct {
		name     string
		format   string
		args     []interface{}
		expected string
	}{
		{
			name:     "simple message",
			format:   "something went wrong",
			args:     nil,
			expected: "Error: something went wrong",
		},
		{
			name:     "formatted message with string",
			format:   "failed to load %s",
			args:     []interface{}{"stats"},
			expected: "Error: failed to load stats",
		},
		{
			name:     "formatted message with multiple args",
			format:   "chain %q has %d habits",
			args:     []interface{}{"Morning", 11},
			expected: "Error: chain \"Morning\" has 11 habits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Formatf(tt.format, tt.args...)
			if result != tt.expected {
				t.Errorf("Formatf(%q, %v) = %q, want %q", tt.format, tt.args, result, tt.expected)
			}
		})
	}
}

// TestFatal runs Fatal in a child process, selected by HABITCHAIN_FATAL_CASE.
func TestFatal(t *testing.T) {
	switch os.Getenv("HABITCHAIN_FATAL_CASE") {
	case "error":
		Fatal(fmt.Errorf("import rejected: %w", ErrIntegrity))
		return
	case "nil":
		Fatal(nil)
		os.Exit(0)
	}

	tests := []struct {
		name       string
		wantExit   int
		wantStderr string
	}{
		{name: "error", wantExit: 1, wantStderr: "Error: import rejected: integrity check failed"},
		{name: "nil", wantExit: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
			cmd.Env = append(os.Environ(), "HABITCHAIN_FATAL_CASE="+tt.name)
			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()
			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("failed to run child process: %v", err)
			}
			if code != tt.wantExit {
				t.Errorf("Fatal() exit code = %d, want %d", code, tt.wantExit)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("chain name %q already exists", "Morning")
	if !Is(err, ErrValidation) {
		t.Fatalf("Validationf() error does not wrap ErrValidation: %v", err)
	}
	want := `validation failed: chain name "Morning" already exists`
	if err.Error() != want {
		t.Errorf("Validationf() = %q, want %q", err.Error(), want)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: Validationf("empty name"), want: "Invalid input"},
		{name: "wrapped rate limit", err: fmt.Errorf("add chain: %w", ErrRateLimited), want: "Too many changes, try again shortly"},
		{name: "integrity", err: ErrIntegrity, want: "Data integrity check failed"},
		{name: "size", err: ErrSizeLimit, want: "Data too large"},
		{name: "not found", err: ErrNotFound, want: "Not found"},
		{name: "other", err: errors.New("boom"), want: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.err); got != tt.want {
				t.Errorf("Title(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

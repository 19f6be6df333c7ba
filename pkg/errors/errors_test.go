package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeTagNotFound, "no tag for %s", "1.2.3")

	if err.Code != ErrCodeTagNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTagNotFound)
	}

	if err.Message != "no tag for 1.2.3" {
		t.Errorf("Message = %v, want %v", err.Message, "no tag for 1.2.3")
	}

	expected := "TAG_NOT_FOUND: no tag for 1.2.3"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeNetwork, cause, "list tags")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "NETWORK_ERROR: list tags: connection reset"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeResolution, "test"),
			code:     ErrCodeResolution,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeResolution, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeResolution, New(ErrCodeAmbiguousSource, "inner"), "outer"),
			code:     ErrCodeResolution,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeResolution, New(ErrCodeAmbiguousSource, "inner"), "outer"),
			code:     ErrCodeAmbiguousSource,
			expected: true,
		},
		{
			name:     "coded error behind fmt wrapping",
			err:      fmt.Errorf("step 2: %w", New(ErrCodeTagNotFound, "inner")),
			code:     ErrCodeTagNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInconsistentTags, "test"), ErrCodeInconsistentTags},
		{"wrapped returns outer", Wrap(ErrCodeTimeout, New(ErrCodeNetwork, "x"), "y"), ErrCodeTimeout},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("with reset", func(t *testing.T) {
		reset := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		err := &RateLimitedError{Host: "api.github.com", ResetAt: reset}
		expected := "rate limited by api.github.com until 2025-01-02T03:04:05Z"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without reset", func(t *testing.T) {
		err := &RateLimitedError{Host: "gitlab.com"}
		if err.Error() != "rate limited by gitlab.com" {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("code method", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeRateLimited)
		}
	})
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOutOfRange, "max results %d not allowed", 0)

	if err.Code != ErrCodeOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOutOfRange)
	}

	if err.Message != "max results 0 not allowed" {
		t.Errorf("Message = %v, want %v", err.Message, "max results 0 not allowed")
	}

	expected := "OUT_OF_RANGE: max results 0 not allowed"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidSpatialExtent, cause, "bad coordinate")

	if err.Code != ErrCodeInvalidSpatialExtent {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSpatialExtent)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
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
			err:      New(ErrCodeEmptyResult, "test"),
			code:     ErrCodeEmptyResult,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyResult, "test"),
			code:     ErrCodeHTTPRequest,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("outer: %w", New(ErrCodeInvalidDateFormat, "inner")),
			code:     ErrCodeInvalidDateFormat,
			expected: true,
		},
		{
			name:     "request error",
			err:      &RequestError{URL: "http://x", StatusCode: 500},
			code:     ErrCodeHTTPRequest,
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

func TestIsValidation(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeOutOfRange, "x"), true},
		{New(ErrCodeInvalidProcessingLevel, "x"), true},
		{New(ErrCodeInvalidSpatialExtent, "x"), true},
		{New(ErrCodeInvalidDateFormat, "x"), true},
		{New(ErrCodeEmptyResult, "x"), false},
		{&RequestError{URL: "u", StatusCode: 404}, false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsValidation(tt.err); got != tt.want {
			t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeEmptyResult, "no items")); got != "no items" {
		t.Errorf("UserMessage() = %q, want %q", got, "no items")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
}

func TestRequestError(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		err := &RequestError{URL: "https://cmr/search", StatusCode: 400}
		expected := `request "https://cmr/search" returned status 400`
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("transport", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &RequestError{URL: "https://cmr/search", Cause: cause}
		if !errors.Is(err, cause) {
			t.Error("errors.Is(err, cause) = false, want true")
		}
		if GetCode(err) != ErrCodeHTTPRequest {
			t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeHTTPRequest)
		}
	})
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeOutOfRange,
		ErrCodeInvalidProcessingLevel,
		ErrCodeInvalidSpatialExtent,
		ErrCodeInvalidDateFormat,
		ErrCodeInvalidPath,
		ErrCodeHTTPRequest,
		ErrCodeEmptyResult,
		ErrCodeMissingURL,
		ErrCodeInvalidURL,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}

package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorClass
	}{
		{"ok", 200, ""},
		{"not modified", 304, ErrorClassClient},
		{"bad request", 400, ErrorClassClient},
		{"unauthorized", 401, ErrorClassAuth},
		{"forbidden", 403, ErrorClassAuth},
		{"not found", 404, ErrorClassClient},
		{"too many requests", 429, ErrorClassRateLimit},
		{"internal server error", 500, ErrorClassServer},
		{"bad gateway", 502, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyStatus(tt.status)
			if result != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, result, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				URL:        "https://ethos.test/api/persons",
				Err:        errors.New("connection refused"),
			},
			expected: "ethos network error (status 0) for https://ethos.test/api/persons: request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "404 Not Found",
				URL:        "https://ethos.test/api/persons/abc",
			},
			expected: "ethos client error (status 404) for https://ethos.test/api/persons/abc: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.apiError.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	apiError := &APIError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        wrappedErr,
	}

	if unwrapped := apiError.Unwrap(); unwrapped != wrappedErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, wrappedErr)
	}

	if !errors.Is(fmt.Errorf("fetch page: %w", apiError), wrappedErr) {
		t.Error("errors.Is should reach the wrapped error through fmt.Errorf")
	}
}

func TestIsAuthError(t *testing.T) {
	authErr := &APIError{StatusCode: 401, ErrorClass: ErrorClassAuth}
	serverErr := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer}

	if !IsAuthError(fmt.Errorf("discovery: %w", authErr)) {
		t.Error("IsAuthError should match a wrapped auth error")
	}
	if IsAuthError(serverErr) {
		t.Error("IsAuthError should not match a server error")
	}
	if IsAuthError(errors.New("plain")) {
		t.Error("IsAuthError should not match a plain error")
	}
}

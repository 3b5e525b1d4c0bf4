package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderErrorPreservesCause(t *testing.T) {
	cause := errors.New("429 Too Many Requests")
	err := NewProviderError("quota exceeded", "Gemini", cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause in the unwrap chain")
	}
	if err.Error() != "quota exceeded: 429 Too Many Requests" {
		t.Errorf("unexpected error string: %q", err.Error())
	}
}

func TestStatusCodeOfWalksWrappedChain(t *testing.T) {
	inner := NewMissingCredentialsError("no key")
	wrapped := fmt.Errorf("handling request: %w", inner)

	if got := StatusCodeOf(wrapped); got != 401 {
		t.Errorf("expected 401, got %d", got)
	}
	if got := CodeOf(wrapped); got != CodeMissingCredentials {
		t.Errorf("expected %s, got %s", CodeMissingCredentials, got)
	}
}

func TestStatusCodeOfDefaults(t *testing.T) {
	if got := StatusCodeOf(errors.New("plain")); got != 500 {
		t.Errorf("expected 500 for unknown error, got %d", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeService {
		t.Errorf("expected %s for unknown error, got %s", CodeService, got)
	}
}

func TestErrorTaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
		want int
	}{
		{NewMissingCredentialsError("m"), CodeMissingCredentials, 401},
		{NewEmptyResponseError("m", "Gemini"), CodeEmptyResponse, 502},
		{NewMalformedResponseError("m", nil), CodeMalformedResponse, 502},
		{NewProviderError("m", "Gemini", nil), CodeProviderFailure, 502},
		{NewValidationError("m", "field", nil), CodeValidation, 400},
		{NewNotFoundError("m", "analysis", int64(42)), CodeNotFound, 404},
		{NewCacheError("m", "get", "key", nil), CodeCache, 500},
	}

	for _, tc := range cases {
		if got := StatusCodeOf(tc.err); got != tc.want {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.want, got)
		}
		if got := CodeOf(tc.err); got != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, got)
		}
	}
}

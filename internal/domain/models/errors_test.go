package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"backend unavailable", &BackendUnavailableError{Backend: "s3", Path: "x", Err: errors.New("timeout")}, true},
		{"wrapped backend unavailable", fmt.Errorf("load: %w", &BackendUnavailableError{Backend: "s3", Path: "x"}), true},
		{"artifact not found", &ArtifactNotFoundError{Backend: "s3", Path: "x"}, false},
		{"unknown ticker", &UnknownTickerError{Ticker: "NOPE"}, false},
		{"malformed metadata", &MalformedMetadataError{Path: "m.json", Reason: "missing version"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

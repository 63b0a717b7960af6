package models

import (
	"errors"
	"fmt"
)

// ErrEmptyTicker is returned when a caller passes a blank ticker.
var ErrEmptyTicker = errors.New("ticker must not be empty")

// UnknownTickerError means the ticker is absent from the asset registry.
type UnknownTickerError struct {
	Ticker string
}

func (e *UnknownTickerError) Error() string {
	return fmt.Sprintf("ticker %q not found in asset registry", e.Ticker)
}

// InactiveAssetError means the ticker is registered but not yet active.
type InactiveAssetError struct {
	Ticker string
	Status AssetStatus
}

func (e *InactiveAssetError) Error() string {
	return fmt.Sprintf("asset %q has status %q, expected %q", e.Ticker, e.Status, StatusActive)
}

// ArtifactNotFoundError means an expected artifact file or key is missing.
type ArtifactNotFoundError struct {
	Backend string
	Path    string
	Err     error
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact not found on %s backend: %s", e.Backend, e.Path)
}

func (e *ArtifactNotFoundError) Unwrap() error { return e.Err }

// BackendUnavailableError wraps a transient storage failure. Callers may retry.
type BackendUnavailableError struct {
	Backend string
	Path    string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable fetching %s: %v", e.Backend, e.Path, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// MalformedMetadataError means a metadata document is missing required fields
// or carries values outside their allowed range.
type MalformedMetadataError struct {
	Path   string
	Reason string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("malformed metadata %s: %s", e.Path, e.Reason)
}

// ArtifactDecodeError means an artifact's bytes could not be deserialized.
type ArtifactDecodeError struct {
	Path   string
	Reason string
}

func (e *ArtifactDecodeError) Error() string {
	return fmt.Sprintf("decode artifact %s: %s", e.Path, e.Reason)
}

// IsRetryable reports whether the error is a transient backend failure that
// the caller may retry with backoff.
func IsRetryable(err error) bool {
	var be *BackendUnavailableError
	return errors.As(err, &be)
}

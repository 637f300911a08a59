package release

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrVersionFileNotFound is returned when the configured version file is missing.
var ErrVersionFileNotFound = errors.New("version file does not exist")

// FormatError reports a version or constraint that cannot be parsed.
type FormatError struct {
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid version %q: %v", e.Input, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ResolutionError reports that no release satisfies a spec on the target platform.
type ResolutionError struct {
	Spec     string
	Platform string
	Arch     string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("Unable to find Specmatic version '%s' for platform %s and architecture %s.", e.Spec, e.Platform, e.Arch)
}

// NetworkErrorKind classifies a NetworkError.
type NetworkErrorKind int

const (
	Transport NetworkErrorKind = iota
	RateLimited
	NotFound
)

func (k NetworkErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate limited"
	case NotFound:
		return "not found"
	default:
		return "transport"
	}
}

// KindFromStatus maps an HTTP status code to the kind of network failure it represents.
func KindFromStatus(statusCode int) NetworkErrorKind {
	switch statusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return RateLimited
	case http.StatusNotFound:
		return NotFound
	default:
		return Transport
	}
}

// NetworkError wraps a failed HTTP request together with its classification.
type NetworkError struct {
	Kind       NetworkErrorKind
	StatusCode int
	URL        string
	Err        error
}

// NewStatusError builds the NetworkError for an unexpected HTTP status.
func NewStatusError(url string, statusCode int) *NetworkError {
	return &NetworkError{
		Kind:       KindFromStatus(statusCode),
		StatusCode: statusCode,
		URL:        url,
		Err:        fmt.Errorf("unexpected status code: %d", statusCode),
	}
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed (%s, status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) IsRateLimited() bool {
	return e.Kind == RateLimited
}

// DownloadError reports a failed artifact download.
type DownloadError struct {
	Version string
	URL     string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s from %s: %v", e.Version, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// CacheError reports a failure to store a downloaded artifact in the tool cache.
type CacheError struct {
	Version string
	Path    string
	Err     error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("failed to cache %s at %s: %v", e.Version, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

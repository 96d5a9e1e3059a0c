package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrEmptyPool means the selection filter left nothing to offer.
	ErrEmptyPool = errors.New("no movies match the selection filter")
	// ErrEmptyListing means the chart produced no usable entries.
	ErrEmptyListing = errors.New("chart page produced no movies")
)

// ConfigError reports a missing or malformed configuration input.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError is a failed page read. StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsGatewayTimeout reports an upstream 504.
func (e *FetchError) IsGatewayTimeout() bool {
	return e.StatusCode == http.StatusGatewayTimeout
}

// ParseError means an expected document block was absent or unreadable.
type ParseError struct {
	URL   string
	Block string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s block", e.Block)
	if e.URL != "" {
		msg += " of " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError names a catalog lookup that matched nothing.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("movie %q not found in catalog (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("movie %q not found in catalog", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

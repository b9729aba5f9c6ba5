package qbittorrent

import (
	"errors"
	"fmt"
)

// Common errors returned by the qBittorrent client.
var (
	// ErrInvalidEndpoint is returned when the configured base URL does
	// not parse as an absolute URL.
	ErrInvalidEndpoint = errors.New("invalid qBittorrent endpoint")

	// ErrAuthFailed is returned when the daemon rejects the login
	// credentials or is unreachable during login.
	ErrAuthFailed = errors.New("qBittorrent authentication failed")
)

// SubmissionError is returned when the daemon rejects an add-torrent
// request. It carries the actual response so the operator can see what
// the daemon said.
type SubmissionError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("qBittorrent rejected torrent: status %d: %q", e.StatusCode, e.Body)
}

package shared

import (
	"errors"
	"fmt"
)

var (
	// Run-level failures: every remaining transfer would hit them again.
	ErrNotAuthenticated = fmt.Errorf("authentication required")
	ErrUnsupported      = fmt.Errorf("operation not supported")

	// Playlist-level failures: the current playlist is skipped.
	ErrRetrievalFailed  = fmt.Errorf("retrieval failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrForbidden        = fmt.Errorf("access to resource denied")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrTokenExpired = fmt.Errorf("access token expired")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// IsFatal reports whether err should abort a whole run rather than a single playlist.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrUnsupported) || errors.Is(err, ErrTokenExpired)
}

// IsSkippable reports whether err only affects the playlist that produced it.
func IsSkippable(err error) bool {
	return err != nil && !IsFatal(err)
}

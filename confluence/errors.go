package confluence

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch failure classification. Both are reported per
// page; a batch run continues past them.
var (
	// ErrNotFound indicates the page or space does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates the credentials lack access to the content.
	ErrPermission = errors.New("permission denied")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermission reports whether err wraps ErrPermission.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

// apiError builds an error for a non-OK API response, wrapping the matching
// sentinel where one applies.
func apiError(statusCode int, resource string) error {
	switch statusCode {
	case 404:
		return fmt.Errorf("%s: %w", resource, ErrNotFound)
	case 401, 403:
		return fmt.Errorf("%s: %w", resource, ErrPermission)
	default:
		return fmt.Errorf("%s: HTTP %d", resource, statusCode)
	}
}

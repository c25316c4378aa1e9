package domain

import "errors"

// Error kinds shared by every client and the action layer.
var (
	// ErrInvalidInput is returned when an identifier or parameter is malformed.
	// Rejected before any I/O and never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when an identifier does not resolve or the upstream
	// has no record for it.
	ErrNotFound = errors.New("not found")

	// ErrDataUnavailable is returned when an identifier resolves but the upstream
	// has no data for it (e.g. a listed token without a price entry).
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrConfigurationMissing is returned when a required credential or endpoint
	// is not configured.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrUpstream marks a transient network or HTTP failure.
	ErrUpstream = errors.New("upstream failure")
)

// IsPermanent reports whether err belongs to a kind that must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDataUnavailable) ||
		errors.Is(err, ErrConfigurationMissing)
}

// Kind returns a short label for the error kind, used in metrics and audit records.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrConfigurationMissing):
		return "configuration_missing"
	default:
		return "upstream"
	}
}

package services

import (
	"agrocommunity_backend/pkg/apperrors"
)

// storeFailure wraps an unexpected repository error. Deadline errors stay
// reachable through Unwrap so the HTTP layer can answer 503.
func storeFailure(err error, domain string) error {
	return apperrors.ErrUpstream(err, domain, "Storage operation failed")
}

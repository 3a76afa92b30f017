package auth

import (
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// Authorize checks that the caller owns a record. Every read result and every
// mutation goes through this single function so the response shape cannot
// drift between services: an ownership mismatch is reported as NotFound, the
// same outcome a lookup for a nonexistent id produces. A caller can therefore
// never distinguish "someone else's record" from "no record".
func Authorize(callerID, recordOwnerID string) error {
	if callerID == "" {
		return errors.NewValidationError("caller identity is required")
	}
	if callerID != recordOwnerID {
		return errors.NewNotFoundError("record")
	}
	return nil
}

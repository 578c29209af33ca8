package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aavahealth/migraine-api/schema"
)

// ErrWindowSize rejects prediction requests outside the 1..7 day window.
var ErrWindowSize = errors.New("need between 1 and 7 days of data")

// ValidationError carries every problem found in an input vector so the
// caller can fix them all in one round trip.
type ValidationError struct {
	Stream   schema.Stream
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s features: %s", e.Stream, strings.Join(e.Problems, "; "))
}

// NoModelError distinguishes a missing base model, which is a deployment
// problem worth alerting on, from a missing personalized model, which is
// the normal state for a new user.
type NoModelError struct {
	Owner  string
	Stream schema.Stream
}

func (e *NoModelError) Error() string {
	if e.BaseMissing() {
		return fmt.Sprintf("no base model trained for the %s stream", e.Stream)
	}
	return fmt.Sprintf("no personalized %s model for user %s", e.Stream, e.Owner)
}

// BaseMissing reports whether even the population fallback is absent.
func (e *NoModelError) BaseMissing() bool {
	return e.Owner == schema.BaseModelOwner
}

package ml

import (
	"errors"
	"fmt"

	"github.com/aavahealth/migraine-api/schema"
)

// ErrSingleClass indicates a user's labeled history contains only one
// outcome, so no decision boundary can be fit.
var ErrSingleClass = errors.New("training data contains a single class")

// InsufficientDataError reports how far a user is from the training
// threshold so callers can surface the exact shortfall.
type InsufficientDataError struct {
	Stream   schema.Stream
	Count    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient %s data: have %d labeled days, need %d", e.Stream, e.Count, e.Required)
}

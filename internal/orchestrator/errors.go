package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/autopost/autopost/internal/adapter"
)

// ErrSubmissionInFlight is returned when a submission is started while a
// previous one has not finished.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ErrCancelled is returned when the user cancels an in-flight submission.
var ErrCancelled = errors.New("posting cancelled by user")

// ValidationError is a pre-dispatch failure. No adapter has been invoked
// and no network call has been made when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// AggregateError is returned when every selected platform failed. Partial
// failure is not an error; it is reported through the response.
type AggregateError struct {
	Results []adapter.Result
}

func (e *AggregateError) Error() string {
	reasons := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		if !r.Success {
			reasons = append(reasons, r.Error)
		}
	}
	return "failed to post to all platforms: " + strings.Join(reasons, ", ")
}

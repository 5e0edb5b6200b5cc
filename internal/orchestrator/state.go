package orchestrator

import (
	"sync"
	"time"

	"github.com/autopost/autopost/internal/adapter"
)

// State tracks the submission lifecycle visible to the caller: whether a
// submission is in flight, the latest results, and the success/error
// banners with their auto-expiry.
type State struct {
	mu           sync.Mutex
	posting      bool
	submissionID string
	success      bool
	errMsg       string
	results      []adapter.Result

	successTimer *time.Timer
	errorTimer   *time.Timer
}

// Snapshot is a point-in-time copy of the submission state.
type Snapshot struct {
	Posting      bool
	SubmissionID string
	Success      bool
	Error        string
	Results      []adapter.Result
}

// NewState creates an idle state tracker.
func NewState() *State {
	return &State{}
}

// begin marks a submission as in flight. Only one may be outstanding.
func (s *State) begin(submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.posting {
		return ErrSubmissionInFlight
	}

	s.posting = true
	s.submissionID = submissionID
	s.success = false
	s.errMsg = ""
	s.results = nil
	s.stopTimersLocked()
	return nil
}

// finish marks the submission as done. Banners set during the submission
// survive until their TTL expires.
func (s *State) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posting = false
}

func (s *State) setResults(results []adapter.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
}

// setSuccess raises the success banner and schedules its expiry.
func (s *State) setSuccess(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.success = true
	s.errMsg = ""
	s.stopTimersLocked()
	if ttl > 0 {
		s.successTimer = time.AfterFunc(ttl, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.success = false
		})
	}
}

// setError raises the error banner and schedules its expiry.
func (s *State) setError(msg string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.success = false
	s.errMsg = msg
	s.stopTimersLocked()
	if ttl > 0 {
		s.errorTimer = time.AfterFunc(ttl, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.errMsg = ""
		})
	}
}

func (s *State) stopTimersLocked() {
	if s.successTimer != nil {
		s.successTimer.Stop()
		s.successTimer = nil
	}
	if s.errorTimer != nil {
		s.errorTimer.Stop()
		s.errorTimer = nil
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Posting:      s.posting,
		SubmissionID: s.submissionID,
		Success:      s.success,
		Error:        s.errMsg,
		Results:      append([]adapter.Result(nil), s.results...),
	}
}

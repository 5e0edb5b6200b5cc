// Package orchestrator coordinates multi-platform post submission: it
// validates the request, fans out to one adapter per selected platform,
// waits for every adapter to settle, and aggregates the outcomes into a
// single response with partial-success semantics.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/autopost/autopost/internal/adapter"
	"github.com/autopost/autopost/internal/platform"
	"github.com/autopost/autopost/internal/progress"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Content is the shared post body.
type Content struct {
	Text          string `validate:"required"`
	Media         []byte
	MediaFileName string
	MediaType     platform.MediaType
}

// Request is the unit of work submitted once per user action.
type Request struct {
	Platforms []platform.Platform `validate:"required,min=1,unique"`
	Content   Content             `validate:"required"`

	LinkedIn *adapter.LinkedInOptions
	Substack *adapter.SubstackOptions
}

// Response aggregates the per-platform outcomes of one submission.
// Success is true only when every platform succeeded; Results preserve the
// order of Request.Platforms.
type Response struct {
	Success bool
	Results []adapter.Result
	Message string
}

// FailedResults returns the results of platforms that did not succeed.
func (r *Response) FailedResults() []adapter.Result {
	var failed []adapter.Result
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}

// Options configures orchestration behavior and outcome callbacks.
type Options struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration

	// OnSuccess fires when every platform succeeded; the caller typically
	// clears the form here.
	OnSuccess func(*Response)

	// OnPartialSuccess fires with the failed results when at least one
	// platform succeeded and at least one failed. The form is kept so the
	// user can retry.
	OnPartialSuccess func(failed []adapter.Result)

	// OnError fires for validation failures, cancellation, and the
	// all-failed case.
	OnError func(message string)
}

// Orchestrator is the multi-platform submission coordinator.
type Orchestrator struct {
	adapters map[platform.Platform]adapter.Adapter
	validate *validator.Validate
	reporter *progress.Reporter
	state    *State
	opts     Options
}

// New creates an orchestrator over the given adapters.
func New(adapters []adapter.Adapter, reporter *progress.Reporter, opts Options) *Orchestrator {
	byPlatform := make(map[platform.Platform]adapter.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	if reporter == nil {
		reporter = progress.NewReporter()
	}
	return &Orchestrator{
		adapters: byPlatform,
		validate: validator.New(),
		reporter: reporter,
		state:    NewState(),
		opts:     opts,
	}
}

// Reporter returns the progress/cancellation reporter for this orchestrator.
func (o *Orchestrator) Reporter() *progress.Reporter { return o.reporter }

// State returns the submission state tracker.
func (o *Orchestrator) State() *State { return o.state }

// Cancel aborts the submission in flight, if any.
func (o *Orchestrator) Cancel() { o.reporter.Cancel() }

// Submit validates the request, posts to every selected platform
// concurrently, and aggregates the outcomes.
//
// The returned error is non-nil for validation failures (before any
// network call), for a second submission while one is outstanding, for
// cancellation, and when every platform failed. Partial success is not an
// error: the response carries Success=false and the individual results.
// Whenever adapters ran, the response is returned alongside the error so
// per-platform results stay inspectable.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Response, error) {
	submissionID := uuid.NewString()
	if err := o.state.begin(submissionID); err != nil {
		return nil, err
	}
	defer o.state.finish()

	subCtx := o.reporter.Begin(ctx, req.Platforms)
	defer o.reporter.Finish()

	if err := o.validateRequest(req); err != nil {
		o.reportError(err.Error())
		return nil, err
	}
	o.reporter.Set(progress.CheckpointValidated)

	slog.Info("submitting post",
		"submission_id", submissionID,
		"platforms", req.Platforms,
		"media_type", req.Content.MediaType,
	)

	results := o.dispatch(subCtx, req)
	o.reporter.Set(progress.CheckpointAggregated)
	o.state.setResults(results)

	resp := aggregate(results)
	o.reporter.Set(progress.CheckpointDone)

	return o.conclude(resp, submissionID)
}

// dispatch runs one adapter per selected platform concurrently and waits
// for every call to settle. A panic inside an adapter becomes a failed
// result rather than tearing down the submission.
func (o *Orchestrator) dispatch(ctx context.Context, req Request) []adapter.Result {
	areq := adapter.Request{
		Text:          req.Content.Text,
		Media:         req.Content.Media,
		MediaFileName: req.Content.MediaFileName,
		MediaType:     req.Content.MediaType,
		LinkedIn:      req.LinkedIn,
		Substack:      req.Substack,
	}

	results := make([]adapter.Result, len(req.Platforms))
	var wg sync.WaitGroup
	for i, p := range req.Platforms {
		wg.Add(1)
		go func(i int, p platform.Platform) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = adapter.Result{
						Platform: p,
						Success:  false,
						Error:    fmt.Sprintf("unexpected error posting to %s: %v", p, r),
					}
				}
			}()
			results[i] = o.adapters[p].Post(ctx, areq)
		}(i, p)
	}
	o.reporter.Set(progress.CheckpointDispatched)
	wg.Wait()

	return results
}

func aggregate(results []adapter.Result) *Response {
	total := len(results)
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	failed := total - succeeded

	message := fmt.Sprintf("Posted to %d/%d platform(s). %d failed.", succeeded, total, failed)
	if failed == 0 {
		message = fmt.Sprintf("Successfully posted to all %d platform(s)!", total)
	}

	return &Response{
		Success: failed == 0,
		Results: results,
		Message: message,
	}
}

// conclude applies the outcome branching: full success, partial success,
// all failed, or cancelled.
func (o *Orchestrator) conclude(resp *Response, submissionID string) (*Response, error) {
	succeeded := len(resp.Results) - len(resp.FailedResults())

	switch {
	case o.reporter.Cancelled():
		slog.Info("submission cancelled", "submission_id", submissionID)
		o.reportError(ErrCancelled.Error())
		return resp, ErrCancelled

	case resp.Success:
		slog.Info("submission succeeded", "submission_id", submissionID, "platforms", len(resp.Results))
		o.state.setSuccess(o.opts.SuccessTTL)
		if o.opts.OnSuccess != nil {
			o.opts.OnSuccess(resp)
		}
		return resp, nil

	case succeeded > 0:
		failed := resp.FailedResults()
		slog.Warn("submission partially succeeded",
			"submission_id", submissionID,
			"succeeded", succeeded,
			"failed", len(failed),
		)
		if o.opts.OnPartialSuccess != nil {
			o.opts.OnPartialSuccess(failed)
		}
		return resp, nil

	default:
		err := &AggregateError{Results: resp.Results}
		slog.Error("submission failed on all platforms", "submission_id", submissionID)
		o.reportError(err.Error())
		return resp, err
	}
}

func (o *Orchestrator) reportError(message string) {
	o.state.setError(message, o.opts.ErrorTTL)
	if o.opts.OnError != nil {
		o.opts.OnError(message)
	}
}

// validateRequest enforces every pre-dispatch invariant. It runs before
// any adapter is invoked and makes no network calls.
func (o *Orchestrator) validateRequest(req Request) error {
	if err := o.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			fe := invalid[0]
			return &ValidationError{Field: fe.Namespace(), Reason: fe.Tag()}
		}
		return &ValidationError{Reason: err.Error()}
	}

	for _, p := range req.Platforms {
		if !p.Valid() {
			return &ValidationError{Field: "platforms", Reason: fmt.Sprintf("unsupported platform: %s", p)}
		}
		if _, ok := o.adapters[p]; !ok {
			return &ValidationError{Field: "platforms", Reason: fmt.Sprintf("no adapter for platform: %s", p)}
		}
	}

	if strings.TrimSpace(req.Content.Text) == "" {
		return &ValidationError{Field: "content.text", Reason: "text is required"}
	}

	if selected(req.Platforms, platform.Substack) {
		if req.Substack == nil || strings.TrimSpace(req.Substack.Title) == "" {
			return &ValidationError{Field: "substack.title", Reason: "Substack posts require a title"}
		}
	}

	if selected(req.Platforms, platform.X) {
		if utf8.RuneCountInString(strings.TrimSpace(req.Content.Text)) > platform.XMaxLength {
			return &ValidationError{
				Field:  "content.text",
				Reason: fmt.Sprintf("text must be no more than %d characters for X", platform.XMaxLength),
			}
		}
	}

	if len(req.Content.Media) > 0 {
		// Media is only allowed for single-platform posts, never for X.
		if len(req.Platforms) > 1 {
			return &ValidationError{Field: "content.media", Reason: "media is not supported when posting to multiple platforms"}
		}
		if selected(req.Platforms, platform.X) {
			return &ValidationError{Field: "content.media", Reason: "media is not supported when posting to X"}
		}
		if req.Content.MediaType != platform.MediaTypeImage && req.Content.MediaType != platform.MediaTypeVideo {
			return &ValidationError{Field: "content.mediaType", Reason: "media requires media type IMAGE or VIDEO"}
		}
	}

	if req.LinkedIn != nil && req.LinkedIn.Visibility != "" && !req.LinkedIn.Visibility.Valid() {
		return &ValidationError{Field: "linkedin.visibility", Reason: fmt.Sprintf("invalid visibility: %s", req.LinkedIn.Visibility)}
	}

	return nil
}

func selected(platforms []platform.Platform, p platform.Platform) bool {
	for _, candidate := range platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

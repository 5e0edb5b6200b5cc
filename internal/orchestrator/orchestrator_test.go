package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/autopost/autopost/internal/adapter"
	"github.com/autopost/autopost/internal/platform"
	"github.com/autopost/autopost/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAdapter records invocations and returns a canned or computed result.
type mockAdapter struct {
	platform platform.Platform

	mu    sync.Mutex
	calls []adapter.Request

	result adapter.Result
	fn     func(ctx context.Context, req adapter.Request) adapter.Result
	delay  time.Duration
	panics bool
}

func (m *mockAdapter) Platform() platform.Platform { return m.platform }

func (m *mockAdapter) Post(ctx context.Context, req adapter.Request) adapter.Result {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.panics {
		panic("adapter exploded")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return adapter.Result{Platform: m.platform, Success: false, Error: ctx.Err().Error()}
		}
	}
	if m.fn != nil {
		return m.fn(ctx, req)
	}
	return m.result
}

func (m *mockAdapter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func succeeding(p platform.Platform) *mockAdapter {
	return &mockAdapter{
		platform: p,
		result:   adapter.Result{Platform: p, Success: true, Data: string(p) + "-ok"},
	}
}

func failing(p platform.Platform, msg string) *mockAdapter {
	return &mockAdapter{
		platform: p,
		result:   adapter.Result{Platform: p, Success: false, Error: msg},
	}
}

func allPlatformsRequest() Request {
	return Request{
		Platforms: []platform.Platform{platform.LinkedIn, platform.X, platform.Substack},
		Content:   Content{Text: "hello", MediaType: platform.MediaTypeText},
		Substack:  &adapter.SubstackOptions{Title: "A Title"},
	}
}

func TestOrchestrator_Validation(t *testing.T) {
	t.Run("empty platforms rejected before any adapter call", func(t *testing.T) {
		adapters := []*mockAdapter{
			succeeding(platform.LinkedIn),
			succeeding(platform.X),
			succeeding(platform.Substack),
		}
		o := New(asAdapters(adapters), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Content: Content{Text: "hello"},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		for _, a := range adapters {
			assert.Zero(t, a.callCount())
		}
	})

	t.Run("substack without title rejected", func(t *testing.T) {
		sub := succeeding(platform.Substack)
		o := New(asAdapters([]*mockAdapter{sub}), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.Substack},
			Content:   Content{Text: "hello"},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Reason, "title")
		assert.Zero(t, sub.callCount())
	})

	t.Run("blank text rejected", func(t *testing.T) {
		x := succeeding(platform.X)
		o := New(asAdapters([]*mockAdapter{x}), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.X},
			Content:   Content{Text: "   "},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Zero(t, x.callCount())
	})

	t.Run("x text over 280 characters rejected", func(t *testing.T) {
		x := succeeding(platform.X)
		o := New(asAdapters([]*mockAdapter{x}), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.X},
			Content:   Content{Text: strings.Repeat("a", platform.XMaxLength+1)},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Reason, "280")
		assert.Zero(t, x.callCount())
	})

	t.Run("media with multiple platforms rejected", func(t *testing.T) {
		adapters := []*mockAdapter{succeeding(platform.LinkedIn), succeeding(platform.X)}
		o := New(asAdapters(adapters), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.LinkedIn, platform.X},
			Content: Content{
				Text:      "hello",
				Media:     []byte{1, 2, 3},
				MediaType: platform.MediaTypeImage,
			},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		// No adapter ever sees a payload carrying the media.
		for _, a := range adapters {
			assert.Zero(t, a.callCount())
		}
	})

	t.Run("media targeting x rejected", func(t *testing.T) {
		x := succeeding(platform.X)
		o := New(asAdapters([]*mockAdapter{x}), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.X},
			Content: Content{
				Text:      "hello",
				Media:     []byte{1},
				MediaType: platform.MediaTypeImage,
			},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Zero(t, x.callCount())
	})

	t.Run("single platform media allowed for linkedin", func(t *testing.T) {
		li := succeeding(platform.LinkedIn)
		o := New(asAdapters([]*mockAdapter{li}), nil, Options{})

		resp, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.LinkedIn},
			Content: Content{
				Text:      "hello",
				Media:     []byte{1, 2},
				MediaType: platform.MediaTypeImage,
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 1, li.callCount())
	})

	t.Run("duplicate platforms rejected", func(t *testing.T) {
		x := succeeding(platform.X)
		o := New(asAdapters([]*mockAdapter{x}), nil, Options{})

		_, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.X, platform.X},
			Content:   Content{Text: "hello"},
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
	})
}

func TestOrchestrator_Submit(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		var resetCalled bool
		o := New(asAdapters([]*mockAdapter{
			succeeding(platform.LinkedIn),
			succeeding(platform.X),
			succeeding(platform.Substack),
		}), nil, Options{
			OnSuccess: func(*Response) { resetCalled = true },
		})

		resp, err := o.Submit(context.Background(), allPlatformsRequest())
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "Successfully posted to all 3 platform(s)!", resp.Message)
		assert.Len(t, resp.Results, 3)
		assert.True(t, resetCalled, "form-reset callback must fire on full success")
	})

	t.Run("one failure is partial success, not an error", func(t *testing.T) {
		var partial []adapter.Result
		o := New(asAdapters([]*mockAdapter{
			succeeding(platform.LinkedIn),
			failing(platform.X, "rate limited"),
			succeeding(platform.Substack),
		}), nil, Options{
			OnPartialSuccess: func(failed []adapter.Result) { partial = failed },
		})

		resp, err := o.Submit(context.Background(), allPlatformsRequest())
		require.NoError(t, err, "partial failure must not surface as an error")

		assert.False(t, resp.Success)
		assert.Len(t, resp.Results, 3)
		assert.Equal(t, "Posted to 2/3 platform(s). 1 failed.", resp.Message)

		var failedCount int
		for _, r := range resp.Results {
			if !r.Success {
				failedCount++
				assert.Equal(t, platform.X, r.Platform)
			}
		}
		assert.Equal(t, 1, failedCount)

		require.Len(t, partial, 1)
		assert.Equal(t, platform.X, partial[0].Platform)
	})

	t.Run("all fail raises aggregate error with every reason", func(t *testing.T) {
		o := New(asAdapters([]*mockAdapter{
			failing(platform.LinkedIn, "token expired"),
			failing(platform.X, "rate limited"),
			failing(platform.Substack, "Substack session not found"),
		}), nil, Options{})

		resp, err := o.Submit(context.Background(), allPlatformsRequest())
		require.Error(t, err)

		var aggErr *AggregateError
		require.True(t, errors.As(err, &aggErr))
		assert.Contains(t, err.Error(), "token expired")
		assert.Contains(t, err.Error(), "rate limited")
		assert.Contains(t, err.Error(), "Substack session not found")
		assert.Contains(t, err.Error(), "token expired, rate limited")

		// Results remain inspectable alongside the error.
		require.NotNil(t, resp)
		assert.Len(t, resp.Results, 3)
	})

	t.Run("one platform failure never prevents another's attempt", func(t *testing.T) {
		li := failing(platform.LinkedIn, "boom")
		x := succeeding(platform.X)
		sub := succeeding(platform.Substack)
		o := New(asAdapters([]*mockAdapter{li, x, sub}), nil, Options{})

		_, err := o.Submit(context.Background(), allPlatformsRequest())
		require.NoError(t, err)

		assert.Equal(t, 1, li.callCount())
		assert.Equal(t, 1, x.callCount())
		assert.Equal(t, 1, sub.callCount())
	})

	t.Run("result order matches request platform order", func(t *testing.T) {
		o := New(asAdapters([]*mockAdapter{
			succeeding(platform.LinkedIn),
			succeeding(platform.X),
			succeeding(platform.Substack),
		}), nil, Options{})

		req := allPlatformsRequest()
		req.Platforms = []platform.Platform{platform.Substack, platform.LinkedIn, platform.X}

		for i := 0; i < 2; i++ {
			resp, err := o.Submit(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, resp.Results, 3)
			assert.Equal(t, platform.Substack, resp.Results[0].Platform)
			assert.Equal(t, platform.LinkedIn, resp.Results[1].Platform)
			assert.Equal(t, platform.X, resp.Results[2].Platform)
		}
	})

	t.Run("adapter panic becomes a failed result", func(t *testing.T) {
		o := New(asAdapters([]*mockAdapter{
			{platform: platform.LinkedIn, panics: true},
			succeeding(platform.X),
			succeeding(platform.Substack),
		}), nil, Options{})

		resp, err := o.Submit(context.Background(), allPlatformsRequest())
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.False(t, resp.Results[0].Success)
		assert.Contains(t, resp.Results[0].Error, "unexpected error")
		assert.True(t, resp.Results[1].Success)
	})

	t.Run("adapters run concurrently", func(t *testing.T) {
		const delay = 100 * time.Millisecond
		adapters := []*mockAdapter{
			{platform: platform.LinkedIn, delay: delay, result: adapter.Result{Platform: platform.LinkedIn, Success: true}},
			{platform: platform.X, delay: delay, result: adapter.Result{Platform: platform.X, Success: true}},
			{platform: platform.Substack, delay: delay, result: adapter.Result{Platform: platform.Substack, Success: true}},
		}
		o := New(asAdapters(adapters), nil, Options{})

		start := time.Now()
		_, err := o.Submit(context.Background(), allPlatformsRequest())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 3*delay, "adapter calls must not run sequentially")
	})

	t.Run("second submission while one is outstanding is rejected", func(t *testing.T) {
		release := make(chan struct{})
		slow := &mockAdapter{
			platform: platform.X,
			fn: func(ctx context.Context, req adapter.Request) adapter.Result {
				<-release
				return adapter.Result{Platform: platform.X, Success: true}
			},
		}
		o := New(asAdapters([]*mockAdapter{slow}), nil, Options{})

		req := Request{
			Platforms: []platform.Platform{platform.X},
			Content:   Content{Text: "hello"},
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := o.Submit(context.Background(), req)
			assert.NoError(t, err)
		}()

		// Wait for the first submission to reach the adapter.
		require.Eventually(t, func() bool { return slow.callCount() == 1 },
			time.Second, 5*time.Millisecond)

		_, err := o.Submit(context.Background(), req)
		assert.ErrorIs(t, err, ErrSubmissionInFlight)

		close(release)
		<-done
	})
}

func TestOrchestrator_Cancel(t *testing.T) {
	started := make(chan struct{})
	slow := &mockAdapter{
		platform: platform.X,
		fn: func(ctx context.Context, req adapter.Request) adapter.Result {
			close(started)
			<-ctx.Done()
			return adapter.Result{Platform: platform.X, Success: false, Error: ctx.Err().Error()}
		},
	}
	o := New(asAdapters([]*mockAdapter{slow}), nil, Options{ErrorTTL: time.Minute})

	type outcome struct {
		resp *Response
		err  error
	}
	results := make(chan outcome, 1)
	go func() {
		resp, err := o.Submit(context.Background(), Request{
			Platforms: []platform.Platform{platform.X},
			Content:   Content{Text: "hello"},
		})
		results <- outcome{resp, err}
	}()

	<-started
	o.Cancel()

	got := <-results
	assert.ErrorIs(t, got.err, ErrCancelled)
	require.NotNil(t, got.resp)
	assert.False(t, got.resp.Success)

	snap := o.State().Snapshot()
	assert.Equal(t, ErrCancelled.Error(), snap.Error)
}

func TestOrchestrator_Progress(t *testing.T) {
	reporter := progress.NewReporter()

	var during int
	probe := &mockAdapter{
		platform: platform.X,
		fn: func(ctx context.Context, req adapter.Request) adapter.Result {
			during = reporter.Progress()
			return adapter.Result{Platform: platform.X, Success: true}
		},
	}
	o := New(asAdapters([]*mockAdapter{probe}), reporter, Options{})

	_, err := o.Submit(context.Background(), Request{
		Platforms: []platform.Platform{platform.X},
		Content:   Content{Text: "hello"},
	})
	require.NoError(t, err)

	// Mid-flight the reporter shows a dispatch-stage checkpoint; afterwards
	// it resets to the baseline.
	assert.GreaterOrEqual(t, during, progress.CheckpointValidated)
	assert.Zero(t, reporter.Progress())
}

func asAdapters(mocks []*mockAdapter) []adapter.Adapter {
	out := make([]adapter.Adapter, len(mocks))
	for i, m := range mocks {
		out[i] = m
	}
	return out
}

package progress

import (
	"context"
	"testing"

	"github.com/autopost/autopost/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Checkpoints(t *testing.T) {
	r := NewReporter()
	assert.Zero(t, r.Progress())

	ctx := r.Begin(context.Background(), []platform.Platform{platform.X})
	require.NoError(t, ctx.Err())

	for _, checkpoint := range []int{
		CheckpointValidated,
		CheckpointDispatched,
		CheckpointAggregated,
		CheckpointDone,
	} {
		r.Set(checkpoint)
		assert.Equal(t, checkpoint, r.Progress())
	}

	// Progress resets on completion.
	r.Finish()
	assert.Zero(t, r.Progress())
	assert.Empty(t, r.Platforms())
}

func TestReporter_Platforms(t *testing.T) {
	r := NewReporter()
	r.Begin(context.Background(), []platform.Platform{platform.LinkedIn, platform.Substack})

	assert.Equal(t, []platform.Platform{platform.LinkedIn, platform.Substack}, r.Platforms())

	// The returned slice is a copy.
	got := r.Platforms()
	got[0] = platform.X
	assert.Equal(t, platform.LinkedIn, r.Platforms()[0])
}

func TestReporter_Cancel(t *testing.T) {
	t.Run("cancels the submission context", func(t *testing.T) {
		r := NewReporter()
		ctx := r.Begin(context.Background(), []platform.Platform{platform.X})

		assert.False(t, r.Cancelled())
		r.Cancel()

		assert.True(t, r.Cancelled())
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("no-op when idle", func(t *testing.T) {
		r := NewReporter()
		r.Cancel()
		assert.False(t, r.Cancelled())
	})

	t.Run("begin clears the cancelled flag", func(t *testing.T) {
		r := NewReporter()
		r.Begin(context.Background(), nil)
		r.Cancel()
		require.True(t, r.Cancelled())

		r.Begin(context.Background(), nil)
		assert.False(t, r.Cancelled())
	})
}

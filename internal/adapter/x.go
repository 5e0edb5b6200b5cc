package adapter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/autopost/autopost/internal/api"
	"github.com/autopost/autopost/internal/platform"
)

// X posts to the microblog. Only text is ever forwarded; media in the
// generic request is ignored here because multi-platform submissions are
// text-only and X posts never carry media in this application. The
// 280-character cap is enforced before submission, not here.
type X struct {
	api *api.Client
}

// NewX creates the X adapter.
func NewX(client *api.Client) *X {
	return &X{api: client}
}

// Platform returns the platform identity.
func (a *X) Platform() platform.Platform { return platform.X }

// Post publishes the request text to X.
func (a *X) Post(ctx context.Context, req Request) Result {
	tweet, err := a.api.CreateTweet(ctx, strings.TrimSpace(req.Text))
	if err != nil {
		return failure(platform.X, err)
	}

	slog.Info("posted to x", "tweet_id", tweet.ID)
	return Result{Platform: platform.X, Success: true, Data: tweet}
}

package adapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/autopost/autopost/internal/api"
	"github.com/autopost/autopost/internal/platform"
)

// SessionSource supplies the Substack session identifier established by a
// prior connection step. An empty ID with nil error means no session.
type SessionSource interface {
	SessionID(ctx context.Context) (string, error)
}

// Substack posts to the newsletter platform. It requires a previously
// established session; without one it fails before any network call.
type Substack struct {
	api      *api.Client
	sessions SessionSource
}

// NewSubstack creates the Substack adapter.
func NewSubstack(client *api.Client, sessions SessionSource) *Substack {
	return &Substack{api: client, sessions: sessions}
}

// Platform returns the platform identity.
func (a *Substack) Platform() platform.Platform { return platform.Substack }

// Post publishes the request to Substack.
func (a *Substack) Post(ctx context.Context, req Request) Result {
	if req.Substack == nil || req.Substack.Title == "" {
		return failure(platform.Substack, errors.New("Substack title is required"))
	}

	sessionID, err := a.sessions.SessionID(ctx)
	if err != nil {
		return failure(platform.Substack, err)
	}
	if sessionID == "" {
		return failure(platform.Substack, errors.New("Substack session not found"))
	}

	post, err := a.api.CreateSubstackPost(ctx, api.SubstackPostRequest{
		Title:     req.Substack.Title,
		Subtitle:  req.Substack.Subtitle,
		Content:   strings.TrimSpace(req.Text),
		IsDraft:   req.Substack.Draft,
		SessionID: sessionID,
	})
	if err != nil {
		return failure(platform.Substack, err)
	}

	slog.Info("posted to substack", "url", post.PostURL, "draft", req.Substack.Draft)
	return Result{Platform: platform.Substack, Success: true, Data: post}
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/autopost/autopost/internal/platform"
)

// Tweet is the created microblog post as reported by the backend.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type tweetRequest struct {
	Text string `json:"text"`
}

type xUserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// XUser fetches the current X connection state. A nil user with nil error
// means no usable connection exists.
func (c *Client) XUser(ctx context.Context) (*platform.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/x/user", platform.X, nil)
	if err != nil {
		slog.Debug("x user check failed", "error", err)
		return nil, nil
	}

	var data xUserData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	if data.ID == "" {
		return nil, nil
	}

	return &platform.User{
		Provider: platform.X,
		X: &platform.XUser{
			ID:          data.ID,
			Handle:      data.Username,
			DisplayName: data.Name,
		},
	}, nil
}

// CreateTweet posts text to X. Media is never sent to X.
func (c *Client) CreateTweet(ctx context.Context, text string) (*Tweet, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/posts/x/tweet", platform.X, tweetRequest{Text: text})
	if err != nil {
		return nil, err
	}

	var tweet Tweet
	if err := decodeData(env, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

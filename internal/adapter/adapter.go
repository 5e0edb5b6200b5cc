// Package adapter translates a generic post payload into each platform's
// specific backend request. Adapters never return errors: every failure is
// converted into a Result with Success false so one platform's outcome can
// never disturb another's.
package adapter

import (
	"context"

	"github.com/autopost/autopost/internal/platform"
)

// Request is the generic payload shared across all platforms.
type Request struct {
	Text          string
	Media         []byte
	MediaFileName string
	MediaType     platform.MediaType

	LinkedIn *LinkedInOptions
	Substack *SubstackOptions
}

// LinkedInOptions carries the professional-network specific fields.
type LinkedInOptions struct {
	Visibility platform.Visibility
	Article    *Article
}

// Article describes a linked article share.
type Article struct {
	URL         string
	Title       string
	Description string
}

// SubstackOptions carries the newsletter specific fields.
type SubstackOptions struct {
	Title    string
	Subtitle string
	Draft    bool
}

// Result is the outcome of one platform's submission attempt. It is
// created once per attempt and never mutated afterwards.
type Result struct {
	Platform platform.Platform
	Success  bool
	Data     any
	Error    string
}

// Adapter posts a generic request to one platform.
type Adapter interface {
	Platform() platform.Platform
	Post(ctx context.Context, req Request) Result
}

func failure(p platform.Platform, err error) Result {
	msg := "failed to post to " + string(p)
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{Platform: p, Success: false, Error: msg}
}

package adapter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/autopost/autopost/internal/api"
	"github.com/autopost/autopost/internal/platform"
)

// LinkedIn posts to the professional network. Media posts upload the blob
// first; the upload is a hard precondition for the post-creation call.
type LinkedIn struct {
	api *api.Client
}

// NewLinkedIn creates the LinkedIn adapter.
func NewLinkedIn(client *api.Client) *LinkedIn {
	return &LinkedIn{api: client}
}

// Platform returns the platform identity.
func (a *LinkedIn) Platform() platform.Platform { return platform.LinkedIn }

// Post publishes the request to LinkedIn.
func (a *LinkedIn) Post(ctx context.Context, req Request) Result {
	var assets []api.MediaAsset

	if hasMedia(req) {
		title, description := mediaCopy(req.MediaType)
		fileName := req.MediaFileName
		if fileName == "" {
			fileName = "media"
		}

		slog.Debug("uploading linkedin media", "media_type", req.MediaType, "bytes", len(req.Media))
		upload, err := a.api.UploadLinkedInMedia(ctx, req.Media, fileName,
			strings.ToLower(string(req.MediaType)), title, description)
		if err != nil {
			// Upload failure aborts the post; there is nothing to retry here.
			return failure(platform.LinkedIn, err)
		}

		assets = append(assets, api.MediaAsset{
			AssetURN:    upload.AssetURN,
			Title:       title,
			Description: description,
		})
	}

	postReq := api.LinkedInPostRequest{
		Text:       strings.TrimSpace(req.Text),
		Visibility: platform.VisibilityPublic,
	}
	if req.LinkedIn != nil && req.LinkedIn.Visibility != "" {
		postReq.Visibility = req.LinkedIn.Visibility
	}
	if req.MediaType != "" && req.MediaType != platform.MediaTypeText {
		postReq.MediaType = req.MediaType
	}
	postReq.Media = assets
	if req.LinkedIn != nil && req.LinkedIn.Article != nil {
		postReq.ArticleURL = req.LinkedIn.Article.URL
		postReq.ArticleTitle = req.LinkedIn.Article.Title
		postReq.ArticleDescription = req.LinkedIn.Article.Description
	}

	post, err := a.api.CreateLinkedInPost(ctx, postReq)
	if err != nil {
		return failure(platform.LinkedIn, err)
	}

	slog.Info("posted to linkedin", "post_id", post.PostID, "url", post.PostURL)
	return Result{Platform: platform.LinkedIn, Success: true, Data: post}
}

func hasMedia(req Request) bool {
	if len(req.Media) == 0 {
		return false
	}
	return req.MediaType == platform.MediaTypeImage || req.MediaType == platform.MediaTypeVideo
}

func mediaCopy(t platform.MediaType) (title, description string) {
	kind := "Image"
	if t == platform.MediaTypeVideo {
		kind = "Video"
	}
	return kind + " from Auto-Post App", kind + " uploaded via Auto-Post application"
}

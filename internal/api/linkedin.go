package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/autopost/autopost/internal/platform"
)

// MediaAsset references an uploaded media blob in a post-creation call.
type MediaAsset struct {
	AssetURN    string `json:"assetUrn"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MediaUpload is the backend's record of an uploaded media blob.
type MediaUpload struct {
	AssetURN   string `json:"assetUrn"`
	MediaType  string `json:"mediaType"`
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	UploadedAt string `json:"uploadedAt"`
}

// LinkedInPostRequest is the post-creation payload.
type LinkedInPostRequest struct {
	Text               string              `json:"text"`
	Visibility         platform.Visibility `json:"visibility"`
	MediaType          platform.MediaType  `json:"mediaType,omitempty"`
	Media              []MediaAsset        `json:"media,omitempty"`
	ArticleURL         string              `json:"articleUrl,omitempty"`
	ArticleTitle       string              `json:"articleTitle,omitempty"`
	ArticleDescription string              `json:"articleDescription,omitempty"`
}

// LinkedInPost is the created post as reported by the backend.
type LinkedInPost struct {
	PostID    string `json:"postId"`
	PostURL   string `json:"postUrl"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// linkedInUserData matches the backend's user payload, which carries a
// single display name the client splits into first/last.
type linkedInUserData struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	LoginTime    string `json:"loginTime"`
	TokenExpires string `json:"tokenExpires"`
}

// LinkedInUser fetches the current LinkedIn connection state. A nil user
// with nil error means no usable connection exists.
func (c *Client) LinkedInUser(ctx context.Context) (*platform.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/linkedin/user", platform.LinkedIn, nil)
	if err != nil {
		slog.Debug("linkedin user check failed", "error", err)
		return nil, nil
	}

	var data linkedInUserData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	if data.ID == "" {
		return nil, nil
	}

	first, last, _ := strings.Cut(data.Name, " ")
	return &platform.User{
		Provider: platform.LinkedIn,
		LinkedIn: &platform.LinkedInUser{
			ID:        data.ID,
			FirstName: first,
			LastName:  last,
			Email:     data.Email,
		},
	}, nil
}

// UploadLinkedInMedia uploads a media blob and returns the asset reference
// used by a subsequent post-creation call.
func (c *Client) UploadLinkedInMedia(ctx context.Context, media []byte, fileName, mediaType, title, description string) (*MediaUpload, error) {
	env, err := c.doMultipart(ctx, "/api/posts/linkedin/upload", platform.LinkedIn, map[string]string{
		"mediaType":   mediaType,
		"title":       title,
		"description": description,
	}, "media", fileName, media)
	if err != nil {
		return nil, err
	}

	var upload MediaUpload
	if err := decodeData(env, &upload); err != nil {
		return nil, err
	}
	if upload.AssetURN == "" {
		return nil, fmt.Errorf("upload response missing asset reference")
	}
	return &upload, nil
}

// CreateLinkedInPost creates a post on the professional network.
func (c *Client) CreateLinkedInPost(ctx context.Context, req LinkedInPostRequest) (*LinkedInPost, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/posts/linkedin/post", platform.LinkedIn, req)
	if err != nil {
		return nil, err
	}

	var post LinkedInPost
	if err := decodeData(env, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

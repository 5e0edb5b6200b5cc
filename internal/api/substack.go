package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/autopost/autopost/internal/platform"
)

// SubstackPostRequest is the newsletter post-creation payload. SessionID is
// the handle obtained from a prior connection step, never from the post
// request itself.
type SubstackPostRequest struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Content   string `json:"content"`
	IsDraft   bool   `json:"isDraft"`
	SessionID string `json:"sessionId"`
}

// SubstackPost is the created newsletter post as reported by the backend.
type SubstackPost struct {
	PostURL string `json:"postUrl"`
}

// SubstackPublication is one newsletter owned by the connected account.
type SubstackPublication struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// SubstackUserData is the account record behind an established login.
type SubstackUserData struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// SubstackUser fetches the current Substack connection state. A nil user
// with nil error means no usable connection exists.
func (c *Client) SubstackUser(ctx context.Context) (*platform.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/substack/user", platform.Substack, nil)
	if err != nil {
		slog.Debug("substack user check failed", "error", err)
		return nil, nil
	}

	var data SubstackUserData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	if data.Email == "" {
		return nil, nil
	}

	status := platform.SubstackAwaitingVerification
	if data.IsLoggedIn {
		status = platform.SubstackLoggedIn
	}
	return &platform.User{
		Provider: platform.Substack,
		Substack: &platform.SubstackUser{
			Email:  data.Email,
			Name:   data.Name,
			Status: status,
		},
	}, nil
}

// CreateSubstackPost creates a newsletter post (or draft).
func (c *Client) CreateSubstackPost(ctx context.Context, req SubstackPostRequest) (*SubstackPost, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/substack/post", "", req)
	if err != nil {
		return nil, err
	}

	var post SubstackPost
	if err := decodeData(env, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateSubstackSession opens a backend login session and returns its ID.
func (c *Client) CreateSubstackSession(ctx context.Context) (string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/substack/session", "", nil)
	if err != nil {
		return "", err
	}

	var data struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	if data.SessionID == "" {
		return "", fmt.Errorf("session response missing session id")
	}
	return data.SessionID, nil
}

// StartSubstackLogin asks the backend to begin the email login flow.
// It returns the login status reported by the backend.
func (c *Client) StartSubstackLogin(ctx context.Context, sessionID, email string) (string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/substack/login", "", map[string]string{
		"sessionId": sessionID,
		"email":     email,
	})
	if err != nil {
		return "", err
	}
	return env.Status, nil
}

// VerifySubstackCode submits the 6-digit code from the login email.
func (c *Client) VerifySubstackCode(ctx context.Context, sessionID, code string) (*SubstackUserData, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/substack/verify", "", map[string]string{
		"sessionId": sessionID,
		"code":      code,
	})
	if err != nil {
		return nil, err
	}

	var data SubstackUserData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// WaitSubstackVerify blocks until the user clicks the email verification
// link (or the backend times out) and returns the issued auth token.
func (c *Client) WaitSubstackVerify(ctx context.Context, sessionID string, timeoutSeconds int) (string, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 300
	}
	env, err := c.doJSON(ctx, http.MethodPost, "/api/substack/wait-verify", "", map[string]any{
		"sessionId":      sessionID,
		"timeoutSeconds": timeoutSeconds,
	})
	if err != nil {
		return "", err
	}

	var data struct {
		SubstackAuthToken string `json:"substackAuthToken"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	if data.SubstackAuthToken == "" {
		return "", fmt.Errorf("verification response missing auth token")
	}
	return data.SubstackAuthToken, nil
}

// SubstackSessionStatus reports whether a backend login session is still
// alive and logged in.
func (c *Client) SubstackSessionStatus(ctx context.Context, sessionID string) (*SubstackUserData, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/substack/session/"+url.PathEscape(sessionID), "", nil)
	if err != nil {
		return nil, err
	}

	var data SubstackUserData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SubstackPublications lists the newsletters available to the session.
func (c *Client) SubstackPublications(ctx context.Context, sessionID string) ([]SubstackPublication, error) {
	path := "/api/substack/publications?sessionId=" + url.QueryEscape(sessionID)
	env, err := c.doJSON(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var pubs []SubstackPublication
	if err := decodeData(env, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

// CloseSubstackSession closes a backend login session.
func (c *Client) CloseSubstackSession(ctx context.Context, sessionID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/substack/session/"+url.PathEscape(sessionID), "", nil)
	return err
}

// Logout tells the backend to discard the credential for a platform.
func (c *Client) Logout(ctx context.Context, p platform.Platform) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/auth/"+string(p)+"/logout", p, nil)
	return err
}

package platform

import (
	"fmt"
	"strings"
)

// Platform identifies one of the supported social platforms.
type Platform string

const (
	// LinkedIn is the professional network.
	LinkedIn Platform = "linkedin"

	// X is the microblogging service (formerly Twitter).
	X Platform = "x"

	// Substack is the newsletter platform.
	Substack Platform = "substack"
)

// All returns every supported platform in canonical order.
func All() []Platform {
	return []Platform{LinkedIn, X, Substack}
}

// Parse converts a user-supplied string into a Platform.
func Parse(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case LinkedIn:
		return LinkedIn, nil
	case X, "twitter":
		return X, nil
	case Substack:
		return Substack, nil
	}
	return "", fmt.Errorf("unsupported platform: %q", s)
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case LinkedIn, X, Substack:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// MediaType describes the kind of content attached to a post.
type MediaType string

const (
	MediaTypeText    MediaType = "TEXT"
	MediaTypeArticle MediaType = "ARTICLE"
	MediaTypeImage   MediaType = "IMAGE"
	MediaTypeVideo   MediaType = "VIDEO"
)

// Visibility controls who can see a LinkedIn post.
type Visibility string

const (
	VisibilityPublic          Visibility = "PUBLIC"
	VisibilityConnections     Visibility = "CONNECTIONS"
	VisibilityLoggedInMembers Visibility = "LOGGED_IN_MEMBERS"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityLoggedInMembers:
		return true
	}
	return false
}

// XMaxLength is the maximum character count for an X post.
// Enforced before submission; adapters treat it as a precondition.
const XMaxLength = 280

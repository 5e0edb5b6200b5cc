package platform

import "strings"

// SubstackStatus tracks where a Substack login sits in its flow.
type SubstackStatus string

const (
	SubstackLoggedIn             SubstackStatus = "logged_in"
	SubstackAwaitingVerification SubstackStatus = "awaiting_verification"
)

// LinkedInUser is the profile record returned for a LinkedIn connection.
type LinkedInUser struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// XUser is the profile record returned for an X connection.
type XUser struct {
	ID          string
	Handle      string
	DisplayName string
}

// SubstackUser is the profile record returned for a Substack connection.
type SubstackUser struct {
	Email  string
	Name   string
	Status SubstackStatus
}

// User is a tagged variant over the three provider-specific profile shapes.
// Exactly the field matching Provider is set; the others are nil.
type User struct {
	Provider Platform
	LinkedIn *LinkedInUser
	X        *XUser
	Substack *SubstackUser
}

// Usable reports whether the record represents a connection that can be
// posted through. A Substack connection is only usable once the login flow
// has completed; the other two are usable whenever a record exists.
func (u *User) Usable() bool {
	if u == nil {
		return false
	}
	switch u.Provider {
	case LinkedIn:
		return u.LinkedIn != nil
	case X:
		return u.X != nil
	case Substack:
		return u.Substack != nil && u.Substack.Status == SubstackLoggedIn
	}
	return false
}

// DisplayName returns a human-readable name for the connected account.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch u.Provider {
	case LinkedIn:
		if u.LinkedIn != nil {
			return strings.TrimSpace(u.LinkedIn.FirstName + " " + u.LinkedIn.LastName)
		}
	case X:
		if u.X != nil {
			if u.X.DisplayName != "" {
				return u.X.DisplayName
			}
			return "@" + u.X.Handle
		}
	case Substack:
		if u.Substack != nil {
			if u.Substack.Name != "" {
				return u.Substack.Name
			}
			return u.Substack.Email
		}
	}
	return ""
}

// Package registry answers "is platform P currently connected and usable?".
// It is a read-through view over connection state the backend maintains; it
// never performs authentication itself.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/autopost/autopost/internal/platform"
)

// UserFetcher fetches the current connection/user record for each platform.
// A nil user with nil error means the platform is not connected.
type UserFetcher interface {
	LinkedInUser(ctx context.Context) (*platform.User, error)
	XUser(ctx context.Context) (*platform.User, error)
	SubstackUser(ctx context.Context) (*platform.User, error)
}

// Registry tracks the per-platform connection state.
type Registry struct {
	mu      sync.RWMutex
	users   map[platform.Platform]*platform.User
	fetcher UserFetcher
}

// New creates an empty registry backed by the given fetcher.
func New(fetcher UserFetcher) *Registry {
	return &Registry{
		users:   make(map[platform.Platform]*platform.User),
		fetcher: fetcher,
	}
}

// Refresh re-reads the connection state for every platform. A failed or
// empty check leaves that platform disconnected rather than failing the
// whole refresh.
func (r *Registry) Refresh(ctx context.Context) {
	checks := map[platform.Platform]func(context.Context) (*platform.User, error){
		platform.LinkedIn: r.fetcher.LinkedInUser,
		platform.X:        r.fetcher.XUser,
		platform.Substack: r.fetcher.SubstackUser,
	}

	for _, p := range platform.All() {
		user, err := checks[p](ctx)
		if err != nil {
			slog.Warn("connection check failed", "platform", p, "error", err)
			user = nil
		}
		r.set(p, user)
	}
}

func (r *Registry) set(p platform.Platform, user *platform.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user == nil {
		delete(r.users, p)
		return
	}
	r.users[p] = user
}

// Set records the connection state for one platform. Used after a connect
// or logout so callers don't need a full refresh.
func (r *Registry) Set(p platform.Platform, user *platform.User) {
	r.set(p, user)
}

// IsConnected reports whether a usable connection exists for the platform.
func (r *Registry) IsConnected(p platform.Platform) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[p].Usable()
}

// ConnectedPlatforms returns the usable platforms in canonical order.
func (r *Registry) ConnectedPlatforms() []platform.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var connected []platform.Platform
	for _, p := range platform.All() {
		if r.users[p].Usable() {
			connected = append(connected, p)
		}
	}
	return connected
}

// User returns the stored record for a platform, or nil.
func (r *Registry) User(p platform.Platform) *platform.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[p]
}

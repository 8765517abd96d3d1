// Package auth resolves the caller of a request into a principal with a role.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Role is the authorization level of a principal.
type Role int

// Roles, from least to most privileged.
const (
	RoleAnonymous Role = iota
	RoleUser
	RoleAdministrator
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdministrator:
		return "administrator"
	default:
		return "anonymous"
	}
}

// Principal is the authenticated (or anonymous) caller.
type Principal struct {
	Name string
	Role Role
}

// Anonymous is the principal of requests without valid credentials.
var Anonymous = Principal{Name: "anonymous", Role: RoleAnonymous}

// IsAuthenticated reports whether the caller presented valid credentials
func (p Principal) IsAuthenticated() bool {
	return p.Role != RoleAnonymous
}

// IsAdministrator reports whether the caller may moderate categories
func (p Principal) IsAdministrator() bool {
	return p.Role == RoleAdministrator
}

type credential struct {
	key       []byte
	principal Principal
}

// Authenticator maps API keys to principals.
type Authenticator struct {
	credentials []credential
}

// NewAuthenticator builds an Authenticator from the configured key lists.
// A key listed as both admin and user key resolves to the administrator.
func NewAuthenticator(cfg types.AuthConfig) *Authenticator {
	a := &Authenticator{}
	for i, key := range cfg.AdminKeys {
		a.add(key, Principal{Name: fmt.Sprintf("admin-%d", i+1), Role: RoleAdministrator})
	}
	for i, key := range cfg.UserKeys {
		a.add(key, Principal{Name: fmt.Sprintf("user-%d", i+1), Role: RoleUser})
	}
	return a
}

func (a *Authenticator) add(key string, p Principal) {
	if key == "" {
		return
	}
	a.credentials = append(a.credentials, credential{key: []byte(key), principal: p})
}

// Authenticate returns the principal owning key, or Anonymous
func (a *Authenticator) Authenticate(key string) Principal {
	if key == "" {
		return Anonymous
	}
	presented := []byte(key)
	for _, c := range a.credentials {
		if subtle.ConstantTimeCompare(presented, c.key) == 1 {
			return c.principal
		}
	}
	return Anonymous
}

type contextKey struct{}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, Anonymous if none
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(contextKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}

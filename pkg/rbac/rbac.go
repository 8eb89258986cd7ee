// Package rbac decides who may change products.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// Policy holds the set of roles allowed to create, update and delete
// products. Ownership is checked separately by CanMutate.
type Policy struct {
	mutable map[string]bool
}

func NewPolicy(mutableRoles ...string) *Policy {
	m := make(map[string]bool, len(mutableRoles))
	for _, r := range mutableRoles {
		m[r] = true
	}
	return &Policy{mutable: m}
}

// CanMutate reports whether p may change a resource owned by ownerID.
func (*Policy) CanMutate(p auth.Principal, ownerID uint) bool {
	return p.IsAdmin() || p.ID == ownerID
}

// CanWrite reports whether role may use product mutation endpoints at all.
func (pol *Policy) CanWrite(role string) bool {
	return pol.mutable[role]
}

// RequireWriter rejects principals whose role is outside the mutable set.
// It must run after the auth middleware.
func (pol *Policy) RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}
		if !pol.CanWrite(p.Role) {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HasRole returns middleware that allows access only to the given roles.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return NewPolicy(roles...).RequireWriter
}

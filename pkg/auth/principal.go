package auth

import "context"

const (
	RoleAdmin     = "admin"
	RoleShopOwner = "shop_owner"
	RoleSeller    = "seller"
	RoleBuyer     = "buyer"
)

// Roles lists every role a user may hold.
var Roles = []string{RoleAdmin, RoleShopOwner, RoleSeller, RoleBuyer}

// Principal is the authenticated caller handed to every core operation.
type Principal struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

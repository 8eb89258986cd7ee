package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	pol := NewPolicy("admin", "shop_owner", "seller")

	cases := []struct {
		name  string
		p     auth.Principal
		owner uint
		want  bool
	}{
		{"admin on someone else's", auth.Principal{ID: 1, Role: auth.RoleAdmin}, 2, true},
		{"owner", auth.Principal{ID: 2, Role: auth.RoleSeller}, 2, true},
		{"other seller", auth.Principal{ID: 3, Role: auth.RoleSeller}, 2, false},
		{"shop owner not owning", auth.Principal{ID: 4, Role: auth.RoleShopOwner}, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pol.CanMutate(tc.p, tc.owner))
		})
	}
}

func TestCanWriteFollowsConfiguredRoles(t *testing.T) {
	wide := NewPolicy("admin", "shop_owner", "seller")
	narrow := NewPolicy("admin", "shop_owner")

	assert.True(t, wide.CanWrite(auth.RoleSeller))
	assert.False(t, narrow.CanWrite(auth.RoleSeller))
	assert.False(t, wide.CanWrite(auth.RoleBuyer))
}

func TestRequireWriter(t *testing.T) {
	pol := NewPolicy("admin", "seller")
	h := pol.RequireWriter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(p *auth.Principal) int {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		if p != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&auth.Principal{ID: 1, Role: auth.RoleBuyer}))
	assert.Equal(t, http.StatusNoContent, serve(&auth.Principal{ID: 1, Role: auth.RoleSeller}))
}

package principal

import (
	"context"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
)

// Principal is the acting user of a request. ParentID is the tenant root and
// DefaultCategoryID the tenant's default category; both are always set.
type Principal struct {
	ID                string `json:"id"`
	ParentID          string `json:"parentId"`
	DefaultCategoryID string `json:"defaultCategoryId"`
	Role              string `json:"role"`
	Name              string `json:"name"`
	Email             string `json:"email"`
}

// IsRoot reports whether the principal is its own tenant root
func (p *Principal) IsRoot() bool { return p.ID == p.ParentID }

// Sanitize turns a stored user into a principal, refusing users whose
// bootstrap never completed.
func Sanitize(u *model.User) (*Principal, error) {
	if u == nil {
		return nil, apperror.Unauthorized("user not found")
	}
	if u.ParentID == "" || u.DefaultCategoryID == nil || *u.DefaultCategoryID == "" {
		return nil, apperror.Internal("user bootstrap incomplete", nil)
	}
	role := u.Role
	// unknown roles get the least privilege
	if !model.ValidRole(role) {
		role = model.RoleGuest
	}
	return &Principal{
		ID:                u.ID,
		ParentID:          u.ParentID,
		DefaultCategoryID: *u.DefaultCategoryID,
		Role:              role,
		Name:              u.Name,
		Email:             u.Email,
	}, nil
}

type ctxKey struct{}

// WithPrincipal stores p on ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored on ctx, if any
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}

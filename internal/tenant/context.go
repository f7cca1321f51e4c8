package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
)

type contextKey string

const (
	tenantKey contextKey = "tenant"
	userKey   contextKey = "user_id"
)

// Context is the resolved tenant for one request: the organization row
// (settings included) and the caller's membership in it. It is built once
// by the tenant middleware and read everywhere else, so a request never
// mixes two organizations.
type Context struct {
	Organization *model.Organization
	Membership   *model.Membership
}

func (t *Context) OrganizationID() uuid.UUID {
	return t.Organization.ID
}

func (t *Context) Role() model.Role {
	return t.Membership.Role
}

func (t *Context) Settings() model.OrganizationSettings {
	return t.Organization.Settings
}

func With(ctx context.Context, t *Context) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

func From(ctx context.Context) (*Context, bool) {
	t, ok := ctx.Value(tenantKey).(*Context)
	return t, ok
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func UserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

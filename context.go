package recordstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantProvider resolves the tenant a call runs for. ok is false for calls
// without a tenant, which only see global records.
type TenantProvider interface {
	TenantID(ctx context.Context) (id uuid.UUID, ok bool)
}

// UserProvider resolves the user stamped into created_by, updated_by and
// deleted_by.
type UserProvider interface {
	UserID(ctx context.Context) (id uuid.UUID, ok bool)
}

type Clock interface {
	Now() time.Time
}

type TenantFunc func(ctx context.Context) (uuid.UUID, bool)

func (f TenantFunc) TenantID(ctx context.Context) (uuid.UUID, bool) { return f(ctx) }

type UserFunc func(ctx context.Context) (uuid.UUID, bool)

func (f UserFunc) UserID(ctx context.Context) (uuid.UUID, bool) { return f(ctx) }

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Identity is the tenant and user a call is made on behalf of.
type Identity struct {
	TenantID *uuid.UUID
	UserID   *uuid.UUID
}

type identityKey struct{}

// WithIdentity returns a context carrying id. It replaces any identity
// already on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// WithTenant sets the tenant of the identity on ctx, keeping its user.
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	id := IdentityFrom(ctx)
	id.TenantID = &tenantID
	return WithIdentity(ctx, id)
}

// WithUser sets the user of the identity on ctx, keeping its tenant.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	id := IdentityFrom(ctx)
	id.UserID = &userID
	return WithIdentity(ctx, id)
}

func IdentityFrom(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}

// ContextTenant reads the tenant from the identity on the call context.
var ContextTenant TenantProvider = TenantFunc(func(ctx context.Context) (uuid.UUID, bool) {
	id := IdentityFrom(ctx)
	if id.TenantID == nil {
		return uuid.Nil, false
	}
	return *id.TenantID, true
})

// ContextUser reads the user from the identity on the call context.
var ContextUser UserProvider = UserFunc(func(ctx context.Context) (uuid.UUID, bool) {
	id := IdentityFrom(ctx)
	if id.UserID == nil {
		return uuid.Nil, false
	}
	return *id.UserID, true
})

func StaticTenant(id uuid.UUID) TenantProvider {
	return TenantFunc(func(context.Context) (uuid.UUID, bool) { return id, true })
}

func StaticUser(id uuid.UUID) UserProvider {
	return UserFunc(func(context.Context) (uuid.UUID, bool) { return id, true })
}

// ambient is what one operation resolved from its providers. Every stamp
// written by the operation uses the same values.
type ambient struct {
	tenant any
	user   any
	now    time.Time
}

func optionalID(id uuid.UUID, ok bool) any {
	if !ok {
		return nil
	}
	return id
}

package authz

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Identity headers set by the trusted gateway in front of the API.
const (
	MemberIDHeader = "X-Member-ID"
	StaffHeader    = "X-Staff"
)

type AuthUser struct {
	ID      int64
	IsStaff bool
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// UserFromHeaders builds the caller identity from the gateway headers. It
// returns nil and no error when the request carries no identity.
func UserFromHeaders(r *http.Request) (*AuthUser, error) {
	raw := strings.TrimSpace(r.Header.Get(MemberIDHeader))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid " + MemberIDHeader + " header")
	}
	staff, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(StaffHeader)))
	return &AuthUser{ID: id, IsStaff: staff}, nil
}

// IsStaff reports whether the given AuthUser represents a staff user.
func IsStaff(user *AuthUser) bool {
	return user != nil && user.IsStaff
}

// RequireUser returns the authenticated caller.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func RequireStaff(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsStaff {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrStaff allows the member who owns a record, or any staff user.
func RequireSelfOrStaff(ctx context.Context, ownerID int64) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if user.IsStaff || user.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

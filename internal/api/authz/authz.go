package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AuthUser struct {
	ID        int64
	Username  string
	IsTrainer bool
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

// IsTrainer reports whether user is signed in with the trainer flag.
func IsTrainer(user *AuthUser) bool {
	return user != nil && user.IsTrainer
}

// RequireTrainer returns ErrUnauthenticated when no user is signed in and
// ErrForbidden when the user is not a trainer.
func RequireTrainer(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsTrainer {
		return ErrForbidden
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// dummyHash is compared against when the email is unknown so that lookups
// for missing and existing accounts take similar time.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return string(hash)
})

// Authenticator checks staff credentials against stored admin accounts.
type Authenticator struct {
	users domain.AdminUserStore
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users domain.AdminUserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the identity for email/password, or
// domain.ErrInvalidCredentials when either is wrong.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*domain.AdminIdentity, error) {
	email = strings.TrimSpace(email)

	user, err := a.users.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			_ = VerifyPassword(password, dummyHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, "admin.authenticate", "failed to verify credentials")
	}

	return &domain.AdminIdentity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

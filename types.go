package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AccountStore is the single capability contract with the persistence
// collaborator. One production implementation backs it, see repo_accounts.go.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindAll(ctx context.Context) ([]*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Update(ctx context.Context, account *Account) error
	DeleteByID(ctx context.Context, id int64) error
}

// Identity holds the attributes of an authenticated identity. It is derived
// from an Account and rebuilt whenever the session must reflect a change.
type Identity interface {
	ID() int64
	// Username is the display name, which for accounts is the email
	Username() string
	Email() string
	Role() string
	Authority() string
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*SessionObject, error)
	SessionFromToken(token string) (*SessionObject, error)
}

// LoginHook runs after a successful authentication and before the caller
// issues its success navigation. Implementations must not fail the login.
type LoginHook interface {
	OnAuthenticationSuccess(ctx context.Context, email, rawPassword string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

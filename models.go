package accounts

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the account's role label
type Role = string

const (
	// RoleUser is the default role assigned at registration
	RoleUser Role = "USER"
	// RoleAdmin is the administrative role
	RoleAdmin Role = "ADMIN"
)

// AuthorityPrefix is prepended to the role to build the granted authority
const AuthorityPrefix = "ROLE_"

// Account is the persisted account record. The Password column always holds
// a scheme tagged credential, never cleartext after creation.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email     string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Password  string     `bun:"password,notnull" json:"-"`
	Role      Role       `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureRole normalizes an absent role to RoleUser. A blank role is a
// fail safe default, not an error.
func (a *Account) EnsureRole() {
	if a == nil {
		return
	}
	if a.Role == "" {
		a.Role = RoleUser
	}
}

// Authority returns the single granted authority for the account's role,
// e.g. ROLE_USER or ROLE_ADMIN. Unset roles resolve as RoleUser.
func (a *Account) Authority() string {
	if a == nil || a.Role == "" {
		return AuthorityPrefix + RoleUser
	}
	return AuthorityPrefix + a.Role
}

// IsValidRole checks the role against the known set
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

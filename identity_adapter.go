package accounts

// AccountIdentity adapts an Account into the Identity interface consumed by
// authentication and authorization checks for the rest of the session.
type AccountIdentity struct {
	account *Account
}

// NewIdentityFromAccount returns an Identity adapter for the provided
// account. The mapping is pure, no I/O happens here.
func NewIdentityFromAccount(account *Account) Identity {
	if account == nil {
		return nil
	}
	return AccountIdentity{account: account}
}

// ID returns the underlying account id
func (a AccountIdentity) ID() int64 {
	if a.account == nil {
		return 0
	}
	return a.account.ID
}

// Username returns the display name, which is the account's email
func (a AccountIdentity) Username() string {
	return a.Email()
}

// Email returns the account's email address
func (a AccountIdentity) Email() string {
	if a.account == nil {
		return ""
	}
	return a.account.Email
}

// Role returns the account's role, defaulting to RoleUser when unset
func (a AccountIdentity) Role() string {
	if a.account == nil || a.account.Role == "" {
		return RoleUser
	}
	return a.account.Role
}

// Authority returns the single granted authority, ROLE_ plus the role
func (a AccountIdentity) Authority() string {
	return a.account.Authority()
}

// Account exposes the underlying record for ownership comparisons
func (a AccountIdentity) Account() *Account {
	return a.account
}

// No lock or expiry modeling exists for accounts, the status flags are
// constant.

// AccountNonExpired reports the account has not expired
func (a AccountIdentity) AccountNonExpired() bool { return true }

// AccountNonLocked reports the account is not locked
func (a AccountIdentity) AccountNonLocked() bool { return true }

// CredentialsNonExpired reports the stored credential has not expired
func (a AccountIdentity) CredentialsNonExpired() bool { return true }

// Enabled reports the account is active
func (a AccountIdentity) Enabled() bool { return true }

var _ Identity = AccountIdentity{}

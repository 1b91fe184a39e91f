package accounts

import "context"

// CredentialUpgrader re-encodes legacy noop credentials under the preferred
// scheme, once, right after a successful authentication. The submitted
// cleartext is only available inside that window, so the write happens
// before the success response is issued.
//
// The hook never fails the enclosing login: the user already authenticated
// correctly against the old credential, so persistence errors are logged
// and swallowed.
type CredentialUpgrader struct {
	store  AccountStore
	logger Logger
}

// NewCredentialUpgrader creates the post login upgrade hook
func NewCredentialUpgrader(store AccountStore) *CredentialUpgrader {
	return &CredentialUpgrader{
		store:  store,
		logger: defLogger{},
	}
}

func (u *CredentialUpgrader) WithLogger(l Logger) *CredentialUpgrader {
	if l != nil {
		u.logger = l
	}
	return u
}

// OnAuthenticationSuccess runs the upgrade for the given login. The account
// is re-fetched by email rather than trusted from the authentication step,
// the stored credential may have changed in between.
func (u *CredentialUpgrader) OnAuthenticationSuccess(ctx context.Context, email, rawPassword string) {
	account, err := u.store.FindByEmail(ctx, email)
	if err != nil || account == nil {
		// authentication already succeeded, a vanished account here is
		// non fatal
		if err != nil {
			u.logger.Warn("credential upgrade lookup failed", "email", email, "error", err)
		}
		return
	}

	if SchemeOf(account.Password) != SchemeNoop || rawPassword == "" {
		return
	}

	encoded, err := EncodePassword(rawPassword)
	if err != nil {
		u.logger.Error("credential upgrade encode failed", "email", email, "error", err)
		return
	}

	account.Password = encoded
	if err := u.store.Update(ctx, account); err != nil {
		u.logger.Error("credential upgrade persist failed", "email", email, "error", err)
		return
	}

	u.logger.Info("credential upgraded to %s scheme", string(SchemeBcrypt))
}

var _ LoginHook = (*CredentialUpgrader)(nil)

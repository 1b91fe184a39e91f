package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AccountProvider resolves authentication identities against the account
// store.
type AccountProvider struct {
	store  AccountStore
	logger Logger
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountStore) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity will find the account, compare the password against the
// stored credential, and return the adapted identity. Unknown emails and
// wrong passwords surface the same invalid credentials failure so callers
// cannot probe which one tripped.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	account, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if account == nil {
		return nil, ErrIdentityNotFound
	}

	if err := ComparePasswordAndHash(password, account.Password); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	account.EnsureRole()

	return NewIdentityFromAccount(account), nil
}

// FindIdentityByEmail loads the adapted identity without a credential check
func (p *AccountProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	account, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, ErrIdentityNotFound
	}

	account.EnsureRole()

	return NewIdentityFromAccount(account), nil
}

var _ IdentityProvider = (*AccountProvider)(nil)

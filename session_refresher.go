package accounts

import "context"

// Refresher re-synchronizes a live session's identity after a self service
// mutation of the logged in user's own record, so "who is logged in" reads
// reflect the new email or role without a logout/login round trip.
//
// It only ever touches the session it is handed, which belongs to the
// calling request. The identity equality check below is what keeps this
// path from ever rewriting another user's session state.
type Refresher struct {
	store  AccountStore
	logger Logger
}

// NewRefresher creates a session identity refresher over the account store
func NewRefresher(store AccountStore) *Refresher {
	return &Refresher{
		store:  store,
		logger: defLogger{},
	}
}

func (r *Refresher) WithLogger(l Logger) *Refresher {
	if l != nil {
		r.logger = l
	}
	return r
}

// RefreshIfSelf replaces the session's identity with a freshly loaded one
// when, and only when, the mutated account is the session's own. Every
// other case is a silent no-op:
//
//   - anonymous session, nothing to refresh
//   - the identity is not our adapter type (system or foreign principal)
//   - the identity belongs to a different account
//   - the account vanished between the mutation and this call
//
// The credentials proof and transport metadata on the session are carried
// forward unchanged.
func (r *Refresher) RefreshIfSelf(ctx context.Context, session *SessionObject, accountID int64) {
	if session == nil || !session.IsAuthenticated() {
		return
	}

	principal, ok := session.Identity().(AccountIdentity)
	if !ok {
		return
	}

	if principal.ID() != accountID {
		return
	}

	account, err := r.store.FindByID(ctx, accountID)
	if err != nil || account == nil {
		if err != nil {
			r.logger.Warn("session refresh lookup failed", "account_id", accountID, "error", err)
		}
		return
	}

	session.setIdentity(NewIdentityFromAccount(account))
}

package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther authenticates form logins against the account store and produces
// the session state the transport layer holds for the rest of the visit.
type Auther struct {
	provider IdentityProvider
	tokens   *TokenService
	hooks    []LoginHook
	logger   Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(provider IdentityProvider, tokens *TokenService) *Auther {
	return &Auther{
		provider: provider,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithLoginHook appends a hook that runs after each successful
// authentication and before Login returns. Hooks run exactly once per
// login, in registration order, and can never fail the login.
func (s *Auther) WithLoginHook(hook LoginHook) *Auther {
	if hook != nil {
		s.hooks = append(s.hooks, hook)
	}
	return s
}

// Login verifies the submitted credentials and, on success, runs the post
// login hooks and establishes an authenticated session. The caller decides
// the success navigation once Login returns.
func (s *Auther) Login(ctx context.Context, email, password string) (*SessionObject, error) {
	return s.LoginWithMetadata(ctx, email, password, nil)
}

// LoginWithMetadata is Login with transport level metadata (originating
// address and the like) to carry on the session.
func (s *Auther) LoginWithMetadata(ctx context.Context, email, password string, meta map[string]any) (*SessionObject, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("login verify identity error", "email", email, "error", err)
		return nil, err
	}

	if identity == nil {
		s.logger.Error("login identity is nil")
		return nil, ErrIdentityNotFound
	}

	// hooks see the raw password while it is still in hand, this is the
	// only window where a legacy credential can be re-encoded
	for _, hook := range s.hooks {
		hook.OnAuthenticationSuccess(ctx, identity.Email(), password)
	}

	token, err := s.tokens.Generate(identity)
	if err != nil {
		s.logger.Error("login token mint error", "error", err)
		return nil, err
	}

	return NewSession(identity, token, meta), nil
}

// SessionFromToken rebuilds a session from a previously minted token. The
// identity is reconstructed from the claims without a store round trip, the
// refresher is what reloads it when the record changes mid session.
func (s *Auther) SessionFromToken(raw string) (*SessionObject, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:    id,
		Email: claims.Email,
		Role:  claims.Role,
	}
	account.EnsureRole()

	return NewSession(NewIdentityFromAccount(account), raw, nil), nil
}

// IdentityFromSession re-resolves the session's identity from the store,
// returning the freshest view of the account
func (s *Auther) IdentityFromSession(ctx context.Context, session *SessionObject) (Identity, error) {
	if session == nil || !session.IsAuthenticated() {
		return nil, ErrIdentityNotFound
	}

	identity, err := s.provider.FindIdentityByEmail(ctx, session.Identity().Email())
	if err != nil {
		s.logger.Error("identity from session lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryAuth, "failed to resolve session identity")
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)

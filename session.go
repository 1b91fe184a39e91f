package accounts

import (
	"time"

	"github.com/google/uuid"
)

// Session metadata keys
const (
	SessionIDKey  = "session_id"
	RemoteAddrKey = "remote_addr"
)

// SessionObject is the live authentication state for one session: the
// adapted identity, the credentials proof presented at login, and transport
// level metadata. The identity is the only part that gets replaced when the
// account behind it changes, everything else is carried forward untouched.
type SessionObject struct {
	identity    Identity
	credentials string
	issuedAt    *time.Time
	data        map[string]any
}

// NewSession builds an authenticated session for the given identity. A
// fresh session id is minted into the metadata alongside any caller
// provided entries.
func NewSession(identity Identity, credentials string, data map[string]any) *SessionObject {
	now := time.Now()

	merged := map[string]any{
		SessionIDKey: uuid.NewString(),
	}
	for k, v := range data {
		merged[k] = v
	}

	return &SessionObject{
		identity:    identity,
		credentials: credentials,
		issuedAt:    &now,
		data:        merged,
	}
}

// AnonymousSession is a session with no authenticated identity
func AnonymousSession() *SessionObject {
	return NewSession(nil, "", nil)
}

// Identity returns the session's authenticated identity, nil for anonymous
// sessions
func (s *SessionObject) Identity() Identity {
	if s == nil {
		return nil
	}
	return s.identity
}

// IsAuthenticated reports whether the session carries an identity
func (s *SessionObject) IsAuthenticated() bool {
	return s != nil && s.identity != nil
}

// Credentials returns the credentials proof captured at login
func (s *SessionObject) Credentials() string {
	if s == nil {
		return ""
	}
	return s.credentials
}

// GetIssuedAt returns when the session was established
func (s *SessionObject) GetIssuedAt() *time.Time {
	if s == nil {
		return nil
	}
	return s.issuedAt
}

// GetData returns the transport level session metadata
func (s *SessionObject) GetData() map[string]any {
	if s == nil {
		return nil
	}
	return s.data
}

// SessionID returns the minted session id from the metadata
func (s *SessionObject) SessionID() string {
	if s == nil || s.data == nil {
		return ""
	}
	if id, ok := s.data[SessionIDKey].(string); ok {
		return id
	}
	return ""
}

// setIdentity installs a replacement identity, leaving credentials proof and
// metadata in place. Only the refresher calls this.
func (s *SessionObject) setIdentity(identity Identity) {
	s.identity = identity
}

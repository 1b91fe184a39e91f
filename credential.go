package accounts

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme identifies the algorithm a stored credential was encoded with
type Scheme string

const (
	// SchemeBcrypt is the current preferred scheme, a salted adaptive hash
	SchemeBcrypt Scheme = "bcrypt"
	// SchemeNoop is the legacy passthrough scheme kept for accounts created
	// before hashing was enabled. Verifiable but never emitted on encode.
	SchemeNoop Scheme = "noop"
	// SchemeUnknown is returned for credentials whose tag we cannot parse
	SchemeUnknown Scheme = ""
)

const bcryptCost = 14

// Credential is the parsed form of a stored password column: a scheme tag
// plus the scheme specific payload. Multiple schemes coexist across accounts
// while legacy credentials are still being upgraded.
type Credential struct {
	Scheme  Scheme
	Payload string
}

// String renders the credential back to its stored {scheme}payload form
func (c Credential) String() string {
	if c.Scheme == SchemeUnknown {
		return c.Payload
	}
	return "{" + string(c.Scheme) + "}" + c.Payload
}

// ParseCredential splits a stored credential into scheme and payload.
// Strings without a well formed {scheme} prefix parse as SchemeUnknown so
// verification fails closed instead of guessing.
func ParseCredential(stored string) Credential {
	if !strings.HasPrefix(stored, "{") {
		return Credential{Scheme: SchemeUnknown, Payload: stored}
	}

	end := strings.Index(stored, "}")
	if end < 1 {
		return Credential{Scheme: SchemeUnknown, Payload: stored}
	}

	switch Scheme(stored[1:end]) {
	case SchemeBcrypt:
		return Credential{Scheme: SchemeBcrypt, Payload: stored[end+1:]}
	case SchemeNoop:
		return Credential{Scheme: SchemeNoop, Payload: stored[end+1:]}
	default:
		return Credential{Scheme: SchemeUnknown, Payload: stored}
	}
}

// SchemeOf reports the scheme a stored credential was encoded under
func SchemeOf(stored string) Scheme {
	return ParseCredential(stored).Scheme
}

// EncodePassword encodes a cleartext password under the preferred scheme.
// Output is salted, two calls for the same input produce different strings.
func EncodePassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return Credential{Scheme: SchemeBcrypt, Payload: string(h)}.String(), nil
}

// VerifyPassword checks a cleartext password against a stored credential,
// dispatching on the scheme tag. Unknown or malformed tags verify as false
// rather than erroring.
func VerifyPassword(password, stored string) bool {
	cred := ParseCredential(stored)

	switch cred.Scheme {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(cred.Payload), []byte(password)) == nil
	case SchemeNoop:
		return subtle.ConstantTimeCompare([]byte(cred.Payload), []byte(password)) == 1
	default:
		return false
	}
}

// ComparePasswordAndHash is the error returning form of VerifyPassword,
// used where callers need the credential mismatch sentinel.
func ComparePasswordAndHash(password, stored string) error {
	if !VerifyPassword(password, stored) {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so callers can branch without
// string matching messages.
const (
	TextCodeInvalidCreds   = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword  = "EMPTY_PASSWORD"
	TextCodeEmailTaken     = "EMAIL_TAKEN"
	TextCodeNotOwner       = "NOT_OWNER"
	TextCodePasswordReused = "PASSWORD_REUSED"
	TextCodeNotFound       = "ACCOUNT_NOT_FOUND"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is returned when a password does not verify
// against the stored credential
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before they reach the encoder
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// NewEmailConflict builds the uniqueness conflict for an already used email
func NewEmailConflict(email string) *errors.Error {
	return errors.New("email address is already in use", errors.CategoryConflict).
		WithTextCode(TextCodeEmailTaken).
		WithMetadata(map[string]any{
			"field": "email",
			"email": email,
		})
}

// NewAccountNotFound builds the not found error for a vanished account id
func NewAccountNotFound(identifier any) *errors.Error {
	return errors.New("account not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(TextCodeNotFound).
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

// NewOwnershipForbidden builds the forbidden error for a self service
// mutation attempted against a record the caller does not own
func NewOwnershipForbidden(accountID int64) *errors.Error {
	return errors.New("account does not belong to the authenticated identity", errors.CategoryAuth).
		WithCode(errors.CodeForbidden).
		WithTextCode(TextCodeNotOwner).
		WithMetadata(map[string]any{
			"account_id": accountID,
		})
}

// NewFieldValidationError wraps an ozzo validation failure into the shared
// taxonomy, carrying the per field messages as metadata
func NewFieldValidationError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, "invalid payload").
		WithMetadata(map[string]any{
			"fields": FormatValidationErrorToMap(err),
		})
}

// IsNotFound reports whether the error marks a missing account record
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// IsConflict reports whether the error is an email uniqueness conflict
func IsConflict(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryConflict
	}
	return false
}

// IsForbidden reports whether the error is an ownership rejection
func IsForbidden(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Code == errors.CodeForbidden
	}
	return false
}

// IsValidationFailure reports whether the error carries field level
// validation messages
func IsValidationFailure(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryValidation
	}
	return false
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field to message map for precise per field feedback. Non field errors
// collapse under the "form" key.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if fieldErrs, ok := err.(validation.Errors); ok {
		for field, ferr := range fieldErrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}

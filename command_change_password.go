package accounts

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// ChangePasswordMessage carries a self service password change. Only the
// account owner can change a password, the current password acts as the
// proof of ownership.
type ChangePasswordMessage struct {
	Email           string `json:"email" form:"email"`
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (m ChangePasswordMessage) Type() string { return "account.change_password" }

// Validate will run the field level rules
func (m ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(
			&m.CurrentPassword,
			validation.Required.Error("current password is required"),
		),
		validation.Field(&m.NewPassword, PasswordPolicyRules()...),
		validation.Field(
			&m.ConfirmPassword,
			validation.Required.Error("confirmation password is required"),
			validation.By(ValidateStringEquals(m.NewPassword)),
		),
	)
}

// ChangePasswordHandler rotates a stored credential after verifying the
// current one. The new credential is always encoded under the preferred
// scheme, so a password change also retires a legacy credential.
type ChangePasswordHandler struct {
	store  AccountStore
	logger Logger
}

// NewChangePasswordHandler creates a handler with sane defaults
func NewChangePasswordHandler(store AccountStore) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		store:  store,
		logger: defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(l Logger) *ChangePasswordHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(
			ctx.Err(),
			errors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if err := event.Validate(); err != nil {
		return NewFieldValidationError(err)
	}

	account, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return NewAccountNotFound(event.Email)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account for password change")
	}
	if account == nil {
		return NewAccountNotFound(event.Email)
	}

	if !VerifyPassword(event.CurrentPassword, account.Password) {
		return ErrMismatchedHashAndPassword
	}

	// a "change" to the password already in place is rejected, whichever
	// scheme the stored credential uses
	if VerifyPassword(event.NewPassword, account.Password) {
		return errors.New("new password must differ from the current password", errors.CategoryAuth).
			WithTextCode(TextCodePasswordReused)
	}

	encoded, err := EncodePassword(event.NewPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode new password")
	}

	account.Password = encoded
	if err := h.store.Update(ctx, account); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not persist new credential")
	}

	return nil
}

package accounts

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// RegisterAccountMessage carries a registration request
type RegisterAccountMessage struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (m RegisterAccountMessage) Type() string { return "account.register" }

// Validate will run the field level rules. Uniqueness is checked by the
// handler once these pass.
func (m RegisterAccountMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(
			&m.Email,
			validation.Required.Error("email is required"),
			is.Email,
		),
		validation.Field(&m.Password, PasswordPolicyRules()...),
	)
}

// RegisterAccountHandler creates accounts from validated registrations.
// Registration always produces a RoleUser account with the password encoded
// under the preferred scheme.
type RegisterAccountHandler struct {
	store  AccountStore
	logger Logger
}

// NewRegisterAccountHandler creates a handler with sane defaults
func NewRegisterAccountHandler(store AccountStore) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		store:  store,
		logger: defLogger{},
	}
}

func (h *RegisterAccountHandler) WithLogger(l Logger) *RegisterAccountHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(
			ctx.Err(),
			errors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if err := event.Validate(); err != nil {
		return NewFieldValidationError(err)
	}

	exists, err := h.store.ExistsByEmail(ctx, event.Email)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
	}
	if exists {
		return NewEmailConflict(event.Email)
	}

	encoded, err := EncodePassword(event.Password)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode password")
	}

	account := &Account{
		Email:    event.Email,
		Password: encoded,
		Role:     RoleUser,
	}

	if _, err := h.store.Create(ctx, account); err != nil {
		// the unique index can still trip between the existence check and
		// the insert, the store reports that as the same conflict
		if IsConflict(err) {
			return err
		}
		return errors.Wrap(err, errors.CategoryInternal, "could not create account")
	}

	return nil
}

package accounts

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// UpdateEmailMessage carries a self service email change for the account
// identified by AccountID. The message is mutated on field validation
// failure: Email is reset to the stored address so the caller never echoes
// a rejected value back as if it were committed.
type UpdateEmailMessage struct {
	AccountID int64  `json:"id" form:"id"`
	Email     string `json:"email" form:"email"`
}

func (m UpdateEmailMessage) Type() string { return "account.update_email" }

// Validate will run the field level rules
func (m UpdateEmailMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(
			&m.Email,
			validation.Required.Error("email is required"),
			is.Email,
		),
	)
}

// UpdateEmailHandler applies a self service email change under strict
// ownership checks, then refreshes the caller's live session identity so
// the new address is visible without re-authentication.
type UpdateEmailHandler struct {
	store     AccountStore
	refresher *Refresher
	logger    Logger
}

// NewUpdateEmailHandler creates a handler with sane defaults
func NewUpdateEmailHandler(store AccountStore, refresher *Refresher) *UpdateEmailHandler {
	return &UpdateEmailHandler{
		store:     store,
		refresher: refresher,
		logger:    defLogger{},
	}
}

func (h *UpdateEmailHandler) WithLogger(l Logger) *UpdateEmailHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *UpdateEmailHandler) Execute(ctx context.Context, event *UpdateEmailMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(
			ctx.Err(),
			errors.CategoryOperation,
			"context cancelled during email update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateEmailHandler) execute(ctx context.Context, event *UpdateEmailMessage) error {
	if err := event.Validate(); err != nil {
		// reset the echoed form value to what is actually stored
		if account, lookupErr := h.store.FindByID(ctx, event.AccountID); lookupErr == nil && account != nil {
			event.Email = account.Email
		}
		return NewFieldValidationError(err)
	}

	account, err := h.store.FindByID(ctx, event.AccountID)
	if err != nil {
		if errors.IsNotFound(err) {
			return NewAccountNotFound(event.AccountID)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account for email update")
	}
	if account == nil {
		return NewAccountNotFound(event.AccountID)
	}

	// ownership: the caller's authenticated email must match the current
	// stored email, a crafted id in the payload is not enough
	caller, ok := IdentityFromContext(ctx)
	if !ok || caller == nil || caller.Email() != account.Email {
		return NewOwnershipForbidden(event.AccountID)
	}

	used, err := h.store.ExistsByEmailExcludingID(ctx, event.Email, event.AccountID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
	}
	if used {
		return NewEmailConflict(event.Email)
	}

	account.Email = event.Email
	if err := h.store.Update(ctx, account); err != nil {
		if IsConflict(err) {
			return err
		}
		return errors.Wrap(err, errors.CategoryInternal, "could not update account email")
	}

	if session, ok := SessionFromContext(ctx); ok {
		h.refresher.RefreshIfSelf(ctx, session, event.AccountID)
	}

	return nil
}

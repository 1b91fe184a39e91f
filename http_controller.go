package accounts

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AccountController maps the form endpoints of the account application onto
// the workflow handlers. It renders nothing, responses are JSON with field
// scoped errors for the caller to present.
type AccountController struct {
	Debug  bool
	Logger Logger
	Store  AccountStore
	Auther *Auther

	register       *RegisterAccountHandler
	updateEmail    *UpdateEmailHandler
	changePassword *ChangePasswordHandler
}

// AccountControllerOption mutates the controller during construction
type AccountControllerOption func(*AccountController) *AccountController

// WithControllerLogger overrides the controller logger
func WithControllerLogger(l Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithControllerDebug toggles payload dumps
func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

// NewAccountController wires the controller over the store and
// authenticator
func NewAccountController(store AccountStore, auther *Auther, opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger: defLogger{},
		Store:  store,
		Auther: auther,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing AccountStore in account controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in account controller...")
	}

	refresher := NewRefresher(store).WithLogger(c.Logger)
	c.register = NewRegisterAccountHandler(store).WithLogger(c.Logger)
	c.updateEmail = NewUpdateEmailHandler(store, refresher).WithLogger(c.Logger)
	c.changePassword = NewChangePasswordHandler(store).WithLogger(c.Logger)

	return c
}

// RegisterRoutes attaches every endpoint to the app
func (a *AccountController) RegisterRoutes(app *fiber.App) {
	app.Post("/login", a.LoginPost)
	app.Post("/register", a.RegistrationCreate)

	app.Get("/account/list", a.RequireAuth, a.List)
	app.Get("/account/:id", a.RequireAuth, a.ByID)
	app.Post("/account/update", a.RequireAuth, a.UpdateEmail)
	app.Post("/account/password", a.RequireAuth, a.ChangePassword)
	app.Post("/account/delete", a.RequireAuth, a.Delete)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// LoginPost authenticates a form login and returns the session token plus
// the landing target. The credential upgrade hook has already run by the
// time the response is written.
func (a *AccountController) LoginPost(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
		})
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	session, err := a.Auther.LoginWithMetadata(ctx.Context(), payload.Email, payload.Password, map[string]any{
		RemoteAddrKey: ctx.IP(),
	})
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": map[string]string{"authentication": "Authentication Error"},
		})
	}

	return ctx.JSON(fiber.Map{
		"token":    session.Credentials(),
		"email":    session.Identity().Email(),
		"role":     session.Identity().Role(),
		"redirect": "/home",
	})
}

// RegistrationCreate handles new account registrations
func (a *AccountController) RegistrationCreate(ctx *fiber.Ctx) error {
	payload := new(RegisterAccountMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register account parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
		})
	}

	if err := a.register.Execute(ctx.Context(), *payload); err != nil {
		a.Logger.Error("register account error: ", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"email": payload.Email,
	})
}

// List returns every account, an administrative view
func (a *AccountController) List(ctx *fiber.Ctx) error {
	records, err := a.Store.FindAll(ctx.Context())
	if err != nil {
		return a.renderError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"accounts": records})
}

// ByID returns a single account
func (a *AccountController) ByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"id": "invalid account id"},
		})
	}

	record, err := a.Store.FindByID(ctx.Context(), int64(id))
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(record)
}

// UpdateEmail applies a self service email change for the caller
func (a *AccountController) UpdateEmail(ctx *fiber.Ctx) error {
	payload := new(UpdateEmailMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("update email parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
		})
	}

	if err := a.updateEmail.Execute(ctx.UserContext(), payload); err != nil {
		a.Logger.Error("update email error: ", "error", err)
		// payload.Email has been reset to the stored value on a field
		// validation failure, echo that back
		return a.renderErrorWithRecord(ctx, err, payload)
	}

	return ctx.JSON(fiber.Map{"email": payload.Email})
}

// ChangePassword rotates the caller's credential
func (a *AccountController) ChangePassword(ctx *fiber.Ctx) error {
	payload := new(ChangePasswordMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("change password parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
		})
	}

	if err := a.changePassword.Execute(ctx.UserContext(), *payload); err != nil {
		a.Logger.Error("change password error: ", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// DeleteRequest payload
type DeleteRequest struct {
	ID int64 `form:"id" json:"id"`
}

// Delete removes an account, an administrative operation
func (a *AccountController) Delete(ctx *fiber.Ctx) error {
	payload := new(DeleteRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
		})
	}

	caller, ok := IdentityFromContext(ctx.UserContext())
	if !ok || caller.Role() != RoleAdmin {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"errors": map[string]string{"form": "administrative operation"},
		})
	}

	if err := a.Store.DeleteByID(ctx.UserContext(), payload.ID); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// RequireAuth validates the bearer token and threads the session and
// identity through the request context for the workflows.
func (a *AccountController) RequireAuth(ctx *fiber.Ctx) error {
	raw := bearerToken(ctx.Get(fiber.HeaderAuthorization))
	if raw == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": map[string]string{"authentication": "missing credentials"},
		})
	}

	session, err := a.Auther.SessionFromToken(raw)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": map[string]string{"authentication": "invalid credentials"},
		})
	}

	reqCtx := WithSession(ctx.UserContext(), session)
	reqCtx = WithIdentity(reqCtx, session.Identity())
	ctx.SetUserContext(reqCtx)

	return ctx.Next()
}

func (a *AccountController) renderError(ctx *fiber.Ctx, err error) error {
	return a.renderErrorWithRecord(ctx, err, nil)
}

func (a *AccountController) renderErrorWithRecord(ctx *fiber.Ctx, err error, record any) error {
	body := fiber.Map{
		"errors": errorFields(err),
	}
	if record != nil {
		body["record"] = record
	}
	return ctx.Status(statusFromError(err)).JSON(body)
}

func statusFromError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	if richErr.Code == errors.CodeForbidden {
		return fiber.StatusForbidden
	}

	switch richErr.Category {
	case errors.CategoryValidation:
		return fiber.StatusUnprocessableEntity
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func errorFields(err error) map[string]string {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if fields, ok := richErr.Metadata["fields"].(map[string]string); ok {
			return fields
		}
		if field, ok := richErr.Metadata["field"].(string); ok {
			return map[string]string{field: richErr.Message}
		}
		return map[string]string{"form": richErr.Message}
	}
	return map[string]string{"form": err.Error()}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

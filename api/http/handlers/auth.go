package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/habits/api/http/presenter"
	"github.com/artem13815/habits/pkg/auth"
	"github.com/artem13815/habits/pkg/metrics"
	"github.com/artem13815/habits/pkg/security/jwt"
)

// Auth actions accepted in the "action" field.
const (
	ActionRegister      = "register"
	ActionLogin         = "login"
	ActionVerify        = "verify"
	ActionResetPassword = "reset_password"
	ActionConfirmReset  = "confirm_reset"
)

const resetRequestedMessage = "If an account with this email exists, a reset code has been sent"

type AuthHandler struct {
	useCase  auth.AuthUseCase
	validate *validator.Validate
	log      *zap.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, validate: newValidator(), log: log}
}

// authRequest is the union of every action's fields.
type authRequest struct {
	Action      string `json:"action"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Login       string `json:"login"`
	Password    string `json:"password"`
	Token       string `json:"token"`
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Username string `json:"username" validate:"required,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type confirmResetRequest struct {
	Email       string `json:"email" validate:"required"`
	ResetCode   string `json:"reset_code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

// Dispatch routes a POST body to the operation named by its "action" field.
// @Summary Auth action
// @Description One endpoint for register, login, verify, reset_password and confirm_reset, selected by "action".
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body authRequest true "action payload"
// @Success 200 {object} map[string]any
// @Success 201 {object} authResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth [post]
func (h *AuthHandler) Dispatch(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	return h.run(c, req.Action, req)
}

// Register is the REST alias of action=register.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} authResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error { return h.alias(c, ActionRegister) }

// Login is the REST alias of action=login.
// @Summary Login by email or username
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} authResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error { return h.alias(c, ActionLogin) }

// Verify is the REST alias of action=verify.
// @Summary Verify token
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body verifyRequest true "token"
// @Success 200 {object} verifyResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} verifyResponse
// @Router  /auth/verify [post]
func (h *AuthHandler) Verify(c *fiber.Ctx) error { return h.alias(c, ActionVerify) }

// ResetPassword is the REST alias of action=reset_password.
// @Summary Request password reset code
// @Description Always answers with the same message whether or not the email is registered.
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body resetPasswordRequest true "email"
// @Success 200 {object} messageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error { return h.alias(c, ActionResetPassword) }

// ConfirmReset is the REST alias of action=confirm_reset.
// @Summary Set a new password with a reset code
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body confirmResetRequest true "reset payload"
// @Success 200 {object} messageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/confirm-reset [post]
func (h *AuthHandler) ConfirmReset(c *fiber.Ctx) error { return h.alias(c, ActionConfirmReset) }

// Me returns the user identified by the bearer token.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]userResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(jwt.LocalUserID).(int64)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Missing or invalid token")
	}
	user, err := h.useCase.Me(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, "me", err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"user": toUserResponse(user)})
}

func (h *AuthHandler) alias(c *fiber.Ctx, action string) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	return h.run(c, action, req)
}

func (h *AuthHandler) run(c *fiber.Ctx, action string, req authRequest) error {
	switch action {
	case ActionRegister:
		return h.register(c, req)
	case ActionLogin:
		return h.login(c, req)
	case ActionVerify:
		return h.verify(c, req)
	case ActionResetPassword:
		return h.resetPassword(c, req)
	case ActionConfirmReset:
		return h.confirmReset(c, req)
	}
	return presenter.Error(c, http.StatusBadRequest, "Invalid action")
}

func (h *AuthHandler) register(c *fiber.Ctx, req authRequest) error {
	in := registerRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Username: strings.TrimSpace(req.Username),
	}
	if err := h.validate.Struct(in); err != nil {
		return h.invalid(c, ActionRegister, err)
	}
	result, err := h.useCase.Register(c.UserContext(), auth.RegisterInput(in))
	if err != nil {
		return h.fail(c, ActionRegister, err)
	}
	metrics.AuthAction(ActionRegister, "ok")
	return presenter.JSON(c, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	})
}

func (h *AuthHandler) login(c *fiber.Ctx, req authRequest) error {
	in := loginRequest{Email: firstNonEmpty(req.Email, req.Login, req.Username), Password: req.Password}
	if err := h.validate.Struct(in); err != nil {
		return h.invalid(c, ActionLogin, err)
	}
	result, err := h.useCase.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return h.fail(c, ActionLogin, err)
	}
	metrics.AuthAction(ActionLogin, "ok")
	return presenter.JSON(c, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	})
}

func (h *AuthHandler) verify(c *fiber.Ctx, req authRequest) error {
	in := verifyRequest{Token: strings.TrimSpace(req.Token)}
	if err := h.validate.Struct(in); err != nil {
		return h.invalid(c, ActionVerify, err)
	}
	id, err := h.useCase.Verify(c.UserContext(), in.Token)
	switch {
	case err == nil:
		metrics.AuthAction(ActionVerify, "ok")
		return presenter.JSON(c, http.StatusOK, verifyResponse{Valid: true, UserID: id.UserID, Email: id.Email})
	case errors.Is(err, auth.ErrTokenExpired):
		metrics.AuthAction(ActionVerify, "expired")
		return presenter.JSON(c, http.StatusUnauthorized, verifyResponse{Error: "Token expired"})
	case errors.Is(err, auth.ErrTokenInvalid):
		metrics.AuthAction(ActionVerify, "invalid_token")
		return presenter.JSON(c, http.StatusUnauthorized, verifyResponse{Error: "Invalid token"})
	}
	return h.fail(c, ActionVerify, err)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx, req authRequest) error {
	in := resetPasswordRequest{Email: strings.TrimSpace(req.Email)}
	if err := h.validate.Struct(in); err != nil {
		return h.invalid(c, ActionResetPassword, err)
	}
	if err := h.useCase.RequestPasswordReset(c.UserContext(), in.Email); err != nil {
		return h.fail(c, ActionResetPassword, err)
	}
	metrics.AuthAction(ActionResetPassword, "ok")
	return presenter.JSON(c, http.StatusOK, messageResponse{Message: resetRequestedMessage})
}

func (h *AuthHandler) confirmReset(c *fiber.Ctx, req authRequest) error {
	in := confirmResetRequest{
		Email:       strings.TrimSpace(req.Email),
		ResetCode:   strings.TrimSpace(req.ResetCode),
		NewPassword: req.NewPassword,
	}
	if err := h.validate.Struct(in); err != nil {
		return h.invalid(c, ActionConfirmReset, err)
	}
	if err := h.useCase.ConfirmPasswordReset(c.UserContext(), in.Email, in.ResetCode, in.NewPassword); err != nil {
		return h.fail(c, ActionConfirmReset, err)
	}
	metrics.AuthAction(ActionConfirmReset, "ok")
	return presenter.JSON(c, http.StatusOK, messageResponse{Message: "Password has been reset successfully"})
}

func (h *AuthHandler) invalid(c *fiber.Ctx, action string, err error) error {
	metrics.AuthAction(action, "invalid")
	return presenter.Error(c, http.StatusBadRequest, validationMessage(err))
}

// fail maps use-case errors onto status codes; anything unrecognised is a 500
// whose detail only goes to the log.
func (h *AuthHandler) fail(c *fiber.Ctx, action string, err error) error {
	var (
		ve auth.ValidationError
		ce *auth.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		metrics.AuthAction(action, "invalid")
		return presenter.Error(c, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ce):
		metrics.AuthAction(action, "conflict")
		return presenter.Error(c, http.StatusBadRequest, ce.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.AuthAction(action, "denied")
		return presenter.Error(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidResetCode):
		metrics.AuthAction(action, "denied")
		return presenter.Error(c, http.StatusUnauthorized, "Invalid reset code")
	case errors.Is(err, auth.ErrUserNotFound):
		metrics.AuthAction(action, "denied")
		return presenter.Error(c, http.StatusUnauthorized, "User not found")
	}
	metrics.AuthAction(action, "error")
	h.log.Error("auth action failed", zap.String("action", action), zap.Error(err))
	return presenter.Error(c, http.StatusInternalServerError, "Server error")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

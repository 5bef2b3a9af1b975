package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/adapter/botapi"
	"wbtxdash/internal/delivery/http/dto"
	"wbtxdash/internal/domain"
	"wbtxdash/internal/middleware"
	"wbtxdash/internal/service"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	auth   *service.AuthService
	signer *middleware.SessionSigner
	log    logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *service.AuthService, signer *middleware.SessionSigner, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		signer: signer,
		log:    logger.WithField("handler", "auth"),
	}
}

// failureMessage prefers the message carried by the API error payload
func failureMessage(err error, fallback string) string {
	if msg := botapi.ErrorMessage(err); msg != "" {
		return msg
	}
	return fallback
}

// Index redirects to the dashboard when logged in, else to login
// GET /
func (h *AuthHandler) Index(c echo.Context) error {
	if middleware.GetAuth(c).IsAuthenticated() {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login form
// GET /login
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if middleware.GetAuth(c).IsAuthenticated() {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return c.Render(http.StatusOK, "login", PageData{
		Title:  "Login",
		Notice: popFlash(c),
		Data:   dto.LoginForm(""),
	})
}

// Login handles the login form
// POST /login
func (h *AuthHandler) Login(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.Render(http.StatusBadRequest, "login", PageData{
			Title:  "Login",
			Notice: &Notice{Level: LevelError, Message: MsgLoginFailed},
			Data:   dto.LoginForm(""),
		})
	}

	session, err := h.auth.Login(c.Request().Context(), creds)
	if err != nil {
		return c.Render(http.StatusOK, "login", PageData{
			Title:  "Login",
			Notice: &Notice{Level: LevelError, Message: failureMessage(err, MsgLoginFailed)},
			Data:   dto.LoginForm(creds.Username),
		})
	}

	if err := h.signer.SetSessionCookie(c, session); err != nil {
		h.log.WithError(err).Error("Failed to issue session cookie")
		_ = h.auth.Logout(c.Request().Context(), session.ID)
		return c.Render(http.StatusOK, "login", PageData{
			Title:  "Login",
			Notice: &Notice{Level: LevelError, Message: MsgLoginFailed},
			Data:   dto.LoginForm(creds.Username),
		})
	}

	return redirectWithNotice(c, "/dashboard", LevelSuccess, MsgLoginSuccess)
}

// RegisterPage renders the registration form
// GET /register
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register", PageData{
		Title:  "Register",
		Notice: popFlash(c),
		Data:   dto.RegisterForm(""),
	})
}

// Register handles the registration form. It never logs the user in.
// POST /register
func (h *AuthHandler) Register(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.Render(http.StatusBadRequest, "register", PageData{
			Title:  "Register",
			Notice: &Notice{Level: LevelError, Message: MsgRegisterFailed},
			Data:   dto.RegisterForm(""),
		})
	}

	if err := h.auth.Register(c.Request().Context(), creds); err != nil {
		return c.Render(http.StatusOK, "register", PageData{
			Title:  "Register",
			Notice: &Notice{Level: LevelError, Message: failureMessage(err, MsgRegisterFailed)},
			Data:   dto.RegisterForm(creds.Username),
		})
	}

	return redirectWithNotice(c, "/login", LevelSuccess, MsgRegisterSuccess)
}

// Logout drops the session and its stored token
// POST /logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), middleware.GetSessionID(c)); err != nil {
		h.log.WithError(err).Warn("Logout cleanup incomplete")
	}
	h.signer.ClearSessionCookie(c)

	return redirectWithNotice(c, "/login", LevelSuccess, MsgLoggedOut)
}

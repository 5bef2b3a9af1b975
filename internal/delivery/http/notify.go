package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

// Notice levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notice messages shown to the user
const (
	MsgLoginSuccess    = "Login successful!"
	MsgLoginFailed     = "Login failed. Please check your credentials."
	MsgRegisterSuccess = "Registration successful! Please login."
	MsgRegisterFailed  = "Registration failed. Please try again."
	MsgLoggedOut       = "Logged out successfully"

	MsgStatsFailed  = "Failed to load dashboard statistics"
	MsgDailyFailed  = "Failed to load daily statistics"
	MsgWalletFailed = "Failed to load wallet balances"

	MsgBotStarted     = "Bot started successfully"
	MsgBotStopped     = "Bot stopped successfully"
	MsgBotStartFailed = "Failed to start bot"
	MsgBotStopFailed  = "Failed to stop bot"

	MsgSignalsFailed      = "Failed to load signals"
	MsgTradesFailed       = "Failed to load trades"
	MsgSignalExportFailed = "Failed to export signals"
	MsgTradeExportFailed  = "Failed to export trades"
)

const flashCookie = "flash"

// Notice is a transient message shown as a toast
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// notify attaches a notice to a fragment response. HTMX turns the
// HX-Trigger header into a "notify" event on the page.
func notify(c echo.Context, level, message string) {
	payload, err := json.Marshal(map[string]Notice{
		"notify": {Level: level, Message: message},
	})
	if err != nil {
		return
	}
	c.Response().Header().Set("HX-Trigger", string(payload))
}

// setFlash stores a notice for the page a redirect lands on
func setFlash(c echo.Context, level, message string) {
	payload, err := json.Marshal(Notice{Level: level, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		MaxAge:   30,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlash reads and clears the flash notice, nil when there is none
func popFlash(c echo.Context) *Notice {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	var notice Notice
	if err := json.Unmarshal([]byte(raw), &notice); err != nil || notice.Message == "" {
		return nil
	}
	return &notice
}

// redirectWithNotice sends the browser to path with a flash notice. HTMX
// requests get an HX-Redirect instead of a 303.
func redirectWithNotice(c echo.Context, path, level, message string) error {
	if message != "" {
		setFlash(c, level, message)
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

// discardStale tells HTMX to leave the page untouched
func discardStale(c echo.Context) error {
	c.Response().Header().Set("HX-Reswap", "none")
	return c.NoContent(http.StatusNoContent)
}

package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbtxdash/internal/adapter/botapi"
	"wbtxdash/internal/delivery/http/dto"
	"wbtxdash/internal/domain"
	"wbtxdash/internal/middleware"
	"wbtxdash/internal/repository"
	"wbtxdash/internal/service"
)

// fakeAPI is a domain.BotAPI whose calls are set per test
type fakeAPI struct {
	login       func(creds domain.Credentials) (string, error)
	register    func(creds domain.Credentials) error
	start, stop func(token string) error
	stats       func(token string) (*domain.StatsOverview, error)
	wallet      func(token string) (*domain.WalletBalances, error)
	trades      func(token string, q domain.ListQuery) (*domain.TradePage, error)
	signals     func(token string, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error)
	export      func(token string) (*domain.Export, error)
}

func (f *fakeAPI) Login(_ context.Context, creds domain.Credentials) (string, error) {
	return f.login(creds)
}

func (f *fakeAPI) Register(_ context.Context, creds domain.Credentials) error {
	return f.register(creds)
}

func (f *fakeAPI) StartBot(_ context.Context, token string) error { return f.start(token) }

func (f *fakeAPI) StopBot(_ context.Context, token string) error { return f.stop(token) }

func (f *fakeAPI) GetStats(_ context.Context, token string) (*domain.StatsOverview, error) {
	return f.stats(token)
}

func (f *fakeAPI) GetDailyStats(context.Context, string) ([]domain.DailyStat, error) {
	return []domain.DailyStat{}, nil
}

func (f *fakeAPI) GetWalletBalances(_ context.Context, token string) (*domain.WalletBalances, error) {
	return f.wallet(token)
}

func (f *fakeAPI) ListTrades(_ context.Context, token string, q domain.ListQuery) (*domain.TradePage, error) {
	return f.trades(token, q)
}

func (f *fakeAPI) GetTradeStats(context.Context, string) (domain.TradeStats, error) {
	return domain.TradeStats{}, nil
}

func (f *fakeAPI) ExportTrades(_ context.Context, token string) (*domain.Export, error) {
	return f.export(token)
}

func (f *fakeAPI) ListDirectionalSignals(_ context.Context, token string, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error) {
	return f.signals(token, q)
}

func (f *fakeAPI) ListIndicatorSignals(context.Context, string, domain.ListQuery) (*domain.SignalPage[domain.IndicatorSignal], error) {
	return &domain.SignalPage[domain.IndicatorSignal]{}, nil
}

func (f *fakeAPI) ExportSignals(_ context.Context, token string) (*domain.Export, error) {
	return f.export(token)
}

type testApp struct {
	e      *echo.Echo
	api    *fakeAPI
	hub    *service.StatusHub
	tokens *repository.MemoryTokenStore
	signer *middleware.SessionSigner
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger, _ := test.NewNullLogger()

	api := &fakeAPI{}
	tokens := repository.NewMemoryTokenStore()
	cache := repository.NewMemoryQueryCache()
	fence := service.NewRequestFence()
	hub := service.NewStatusHub(logger)
	auth := service.NewAuthService(api, tokens, cache, fence, time.Hour, logger)
	queries := service.NewQueryService(api, cache, 0, logger)
	signer := middleware.NewSessionSigner("test-secret", false)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	SetupRoutes(e, &RouterConfig{
		AuthHandler:      NewAuthHandler(auth, signer, logger),
		DashboardHandler: NewDashboardHandler(queries, service.NewBotService(api, hub, logger), hub, logger),
		ListHandler:      NewListHandler(queries, fence, domain.ShapeDirectional, logger),
		StatusHandler:    NewStatusHandler(hub, logger),
		Signer:           signer,
		Sessions:         auth,
	})

	return &testApp{e: e, api: api, hub: hub, tokens: tokens, signer: signer}
}

// login stores a session directly and returns its cookie
func (a *testApp) login(t *testing.T, token string) *http.Cookie {
	t.Helper()
	session := &domain.Session{
		ID:        uuid.New(),
		Username:  "alice",
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, a.tokens.Save(context.Background(), session))

	value, err := a.signer.Sign(session)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: value}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndex_RedirectsByAuthState(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/", nil), app.login(t, "tok"))
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestLogin_SetsSessionCookieAndRedirects(t *testing.T) {
	app := newTestApp(t)
	app.api.login = func(creds domain.Credentials) (string, error) {
		assert.Equal(t, "alice", creds.Username)
		return "bearer-1", nil
	}

	form := url.Values{"username": {"alice"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := app.do(req, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	cookie := findCookie(rec, middleware.SessionCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	claims, err := app.signer.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	session, err := app.tokens.Get(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "bearer-1", session.Token)
	assert.NotNil(t, findCookie(rec, flashCookie))
}

func TestLogin_FailureKeepsUsernameAndShowsMessage(t *testing.T) {
	app := newTestApp(t)
	app.api.login = func(domain.Credentials) (string, error) {
		return "", &botapi.APIError{StatusCode: http.StatusUnauthorized, Message: "Incorrect username or password"}
	}

	form := url.Values{"username": {"alice"}, "password": {"bad"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := app.do(req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect username or password")
	assert.Contains(t, rec.Body.String(), `value="alice"`)
	assert.Nil(t, findCookie(rec, middleware.SessionCookie))
}

func TestLogin_ExpiredBearerTokenFails(t *testing.T) {
	app := newTestApp(t)
	bearer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	app.api.login = func(domain.Credentials) (string, error) { return bearer, nil }

	form := url.Values{"username": {"alice"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := app.do(req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgLoginFailed)
	assert.NotContains(t, rec.Body.String(), MsgLoginSuccess)
	assert.Nil(t, findCookie(rec, middleware.SessionCookie))
	assert.Zero(t, app.tokens.Len())
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "tok")
	claims, err := app.signer.Parse(cookie.Value)
	require.NoError(t, err)

	rec := app.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	cleared := findCookie(rec, middleware.SessionCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	_, err = app.tokens.Get(context.Background(), claims.SessionID)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestDashboard_RendersAnonymously(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bot-status-label")
	assert.Contains(t, rec.Body.String(), "Unknown")
}

func TestStats_SendsBearerToken(t *testing.T) {
	app := newTestApp(t)
	var got string
	app.api.stats = func(token string) (*domain.StatsOverview, error) {
		got = token
		return &domain.StatsOverview{TotalProfitUSD: 1234.5, WinRate: 61.25}, nil
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil), app.login(t, "tok-9"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-9", got)
	assert.Contains(t, rec.Body.String(), "$1234.50")
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
}

func TestWallet_FailureRendersZeroBalances(t *testing.T) {
	app := newTestApp(t)
	app.api.wallet = func(string) (*domain.WalletBalances, error) {
		return nil, errors.New("connection refused")
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/wallet", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "BNB")
	assert.Contains(t, body, "USDT")
	assert.Contains(t, body, "WBTC")
	assert.Contains(t, body, "$0.00")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), MsgWalletFailed)
}

func TestStartBot(t *testing.T) {
	t.Run("accepted leaves status pending", func(t *testing.T) {
		app := newTestApp(t)
		app.hub.Set(domain.BotStopped)
		app.api.start = func(token string) error {
			assert.Equal(t, "tok", token)
			return nil
		}

		rec := app.do(httptest.NewRequest(http.MethodPost, "/bot/start", nil), app.login(t, "tok"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.BotPending, app.hub.Current())
		assert.Contains(t, rec.Body.String(), "Pending")
		assert.Contains(t, rec.Header().Get("HX-Trigger"), MsgBotStarted)
	})

	t.Run("failure restores status", func(t *testing.T) {
		app := newTestApp(t)
		app.hub.Set(domain.BotStopped)
		app.api.start = func(string) error {
			return &botapi.APIError{StatusCode: http.StatusInternalServerError}
		}

		rec := app.do(httptest.NewRequest(http.MethodPost, "/bot/start", nil), app.login(t, "tok"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.BotStopped, app.hub.Current())
		assert.Contains(t, rec.Header().Get("HX-Trigger"), MsgBotStartFailed)
	})

	t.Run("disabled while running", func(t *testing.T) {
		app := newTestApp(t)
		app.hub.Set(domain.BotRunning)
		app.api.start = func(string) error {
			t.Error("start must not be called while running")
			return nil
		}

		rec := app.do(httptest.NewRequest(http.MethodPost, "/bot/start", nil), app.login(t, "tok"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.BotRunning, app.hub.Current())
		assert.Empty(t, rec.Header().Get("HX-Trigger"))
	})
}

func TestTradesTable_Pagination(t *testing.T) {
	app := newTestApp(t)
	app.api.trades = func(_ string, q domain.ListQuery) (*domain.TradePage, error) {
		assert.Equal(t, domain.ListQuery{Page: 2, PageSize: 10, Type: domain.FilterAll}, q)
		return &domain.TradePage{Trades: make([]domain.Trade, 10), Total: 25}, nil
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/trades/table?page=2&type=bogus", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `Showing <span class="font-medium">11</span> to <span class="font-medium">20</span> of <span class="font-medium">25</span> results`)
	assert.NotContains(t, body, "No trades found")
}

func TestSignalsTable_EmptyHidesPagination(t *testing.T) {
	app := newTestApp(t)
	app.api.signals = func(_ string, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error) {
		assert.Equal(t, domain.SideShort, q.Type)
		return &domain.SignalPage[domain.DirectionalSignal]{Signals: []domain.DirectionalSignal{}}, nil
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/signals/table?type=SHORT", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No signals found")
	assert.NotContains(t, rec.Body.String(), "Showing")
}

func TestTradesTable_DiscardsStaleResponse(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "tok")

	entered := make(chan struct{})
	release := make(chan struct{})
	app.api.trades = func(_ string, q domain.ListQuery) (*domain.TradePage, error) {
		if q.Page == 1 {
			close(entered)
			<-release
		}
		return &domain.TradePage{Trades: []domain.Trade{}, Total: 25}, nil
	}

	var (
		wg    sync.WaitGroup
		stale *httptest.ResponseRecorder
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		stale = app.do(httptest.NewRequest(http.MethodGet, "/trades/table?page=1", nil), cookie)
	}()

	<-entered
	fresh := app.do(httptest.NewRequest(http.MethodGet, "/trades/table?page=2", nil), cookie)
	close(release)
	wg.Wait()

	assert.Equal(t, http.StatusOK, fresh.Code)
	assert.Equal(t, http.StatusNoContent, stale.Code)
	assert.Equal(t, "none", stale.Header().Get("HX-Reswap"))
}

func TestExport(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		app := newTestApp(t)
		app.api.export = func(string) (*domain.Export, error) {
			return &domain.Export{Filename: "trades.csv", ContentType: "text/csv", Body: []byte("id\n1\n")}, nil
		}

		rec := app.do(httptest.NewRequest(http.MethodGet, "/trades/export", nil), app.login(t, "tok"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="trades.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
		assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, "id\n1\n", rec.Body.String())
	})

	t.Run("failure redirects with notice", func(t *testing.T) {
		app := newTestApp(t)
		app.api.export = func(string) (*domain.Export, error) {
			return nil, &botapi.APIError{StatusCode: http.StatusUnauthorized}
		}

		rec := app.do(httptest.NewRequest(http.MethodGet, "/signals/export", nil), nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/signals", rec.Header().Get(echo.HeaderLocation))
		assert.NotNil(t, findCookie(rec, flashCookie))
	})
}

func TestStatusSocket_PushesCurrentAndChanges(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/status", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var view dto.StatusView
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, dto.NewStatusView(domain.BotUnknown), view)

	app.hub.Set(domain.BotRunning)
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, "Running", view.Label)
	assert.False(t, view.CanStart)
	assert.True(t, view.CanStop)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return app.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// Login body encodings
const (
	EncodingJSON = "json"
	EncodingForm = "form"
)

// Client implements domain.BotAPI over HTTP
type Client struct {
	endpoints     Endpoints
	httpClient    *http.Client
	loginEncoding string
	log           logrus.FieldLogger
}

// NewClient creates a bot API client
func NewClient(endpoints Endpoints, timeout time.Duration, loginEncoding string, logger logrus.FieldLogger) *Client {
	if loginEncoding == "" {
		loginEncoding = EncodingJSON
	}
	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		loginEncoding: loginEncoding,
		log:           logger.WithField("component", "botapi"),
	}
}

// Endpoints returns the registry the client was built with
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// do executes a request and returns the body of a 2xx response. The bearer
// token is attached only when non-empty.
func (c *Client) do(ctx context.Context, method, rawURL, token string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create request")
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s", method, rawURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read response of %s %s", method, rawURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    payloadMessage(respBody),
		}
	}

	return resp, respBody, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, token string, dst interface{}) error {
	_, body, err := c.do(ctx, http.MethodGet, rawURL, token, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(ErrUnexpectedShape, "decode %s: %v", rawURL, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, rawURL, token string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	_, body, err := c.do(ctx, http.MethodPost, rawURL, token, bytes.NewReader(data), "application/json")
	return body, err
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var (
		body []byte
		err  error
	)

	if c.loginEncoding == EncodingForm {
		form := url.Values{}
		form.Set("username", creds.Username)
		form.Set("password", creds.Password)
		_, body, err = c.do(ctx, http.MethodPost, c.endpoints.Auth.Login, "",
			strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	} else {
		body, err = c.postJSON(ctx, c.endpoints.Auth.Login, "", creds)
	}
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrapf(ErrUnexpectedShape, "decode login response: %v", err)
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return "", errors.Wrap(ErrUnexpectedShape, "login response carries no token")
	}

	return token, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	_, err := c.postJSON(ctx, c.endpoints.Auth.Register, "", creds)
	return err
}

// StartBot asks the backend to start the bot
func (c *Client) StartBot(ctx context.Context, token string) error {
	_, err := c.postJSON(ctx, c.endpoints.Bot.Start, token, struct{}{})
	return err
}

// StopBot asks the backend to stop the bot
func (c *Client) StopBot(ctx context.Context, token string) error {
	_, err := c.postJSON(ctx, c.endpoints.Bot.Stop, token, struct{}{})
	return err
}

// GetStats fetches the profit overview
func (c *Client) GetStats(ctx context.Context, token string) (*domain.StatsOverview, error) {
	var stats domain.StatsOverview
	if err := c.getJSON(ctx, c.endpoints.Stats.Overview, token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetDailyStats fetches the daily profit series. A body that is not an array
// is logged and treated as an empty series.
func (c *Client) GetDailyStats(ctx context.Context, token string) ([]domain.DailyStat, error) {
	_, body, err := c.do(ctx, http.MethodGet, c.endpoints.Stats.Daily, token, nil, "")
	if err != nil {
		return nil, err
	}

	var daily []domain.DailyStat
	if err := json.Unmarshal(body, &daily); err != nil {
		c.log.WithError(err).Warn("daily stats is not an array")
		return []domain.DailyStat{}, nil
	}
	if daily == nil {
		daily = []domain.DailyStat{}
	}
	return daily, nil
}

// GetWalletBalances fetches token balances and prices
func (c *Client) GetWalletBalances(ctx context.Context, token string) (*domain.WalletBalances, error) {
	var balances domain.WalletBalances
	if err := c.getJSON(ctx, c.endpoints.Wallet.Balances, token, &balances); err != nil {
		return nil, err
	}
	return &balances, nil
}

func listURL(base string, q domain.ListQuery, typeParam string) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	params.Set(typeParam, q.Type)
	return base + "?" + params.Encode()
}

// ListTrades fetches one page of trades
func (c *Client) ListTrades(ctx context.Context, token string, q domain.ListQuery) (*domain.TradePage, error) {
	_, body, err := c.do(ctx, http.MethodGet, listURL(c.endpoints.Trades.List, q, "trade_type"), token, nil, "")
	if err != nil {
		return nil, err
	}
	return NormalizeTrades(body)
}

// GetTradeStats fetches the trade summary, keeping its numeric fields
func (c *Client) GetTradeStats(ctx context.Context, token string) (domain.TradeStats, error) {
	var raw map[string]interface{}
	if err := c.getJSON(ctx, c.endpoints.Trades.Stats, token, &raw); err != nil {
		return nil, err
	}

	stats := make(domain.TradeStats, len(raw))
	for k, v := range raw {
		if n, ok := v.(float64); ok {
			stats[k] = n
		}
	}
	return stats, nil
}

// ExportTrades downloads the trades CSV
func (c *Client) ExportTrades(ctx context.Context, token string) (*domain.Export, error) {
	return c.export(ctx, c.endpoints.Trades.Export, token, "trades.csv")
}

// ListDirectionalSignals fetches one page of LONG/SHORT signals
func (c *Client) ListDirectionalSignals(ctx context.Context, token string, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error) {
	_, body, err := c.do(ctx, http.MethodGet, listURL(c.endpoints.Signals.List, q, "signal_type"), token, nil, "")
	if err != nil {
		return nil, err
	}
	return NormalizeSignals[domain.DirectionalSignal](body)
}

// ListIndicatorSignals fetches one page of buy/sell indicator signals
func (c *Client) ListIndicatorSignals(ctx context.Context, token string, q domain.ListQuery) (*domain.SignalPage[domain.IndicatorSignal], error) {
	_, body, err := c.do(ctx, http.MethodGet, listURL(c.endpoints.Signals.List, q, "signal_type"), token, nil, "")
	if err != nil {
		return nil, err
	}
	return NormalizeSignals[domain.IndicatorSignal](body)
}

// ExportSignals downloads the signals CSV
func (c *Client) ExportSignals(ctx context.Context, token string) (*domain.Export, error) {
	return c.export(ctx, c.endpoints.Signals.Export, token, "signals.csv")
}

func (c *Client) export(ctx context.Context, rawURL, token, filename string) (*domain.Export, error) {
	resp, body, err := c.do(ctx, http.MethodGet, rawURL, token, nil, "")
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}

	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}

	return &domain.Export{
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
	}, nil
}

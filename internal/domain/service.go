package domain

import "context"

// Export is a file returned by one of the API's export endpoints
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// AuthAPI is the part of the bot API used to obtain credentials
type AuthAPI interface {
	// Login exchanges credentials for a bearer token
	Login(ctx context.Context, creds Credentials) (string, error)

	// Register creates an account; it does not log in
	Register(ctx context.Context, creds Credentials) error
}

// BotAPI defines every call the dashboard makes against the bot backend.
// An empty token sends the request without an Authorization header.
type BotAPI interface {
	AuthAPI

	StartBot(ctx context.Context, token string) error
	StopBot(ctx context.Context, token string) error

	GetStats(ctx context.Context, token string) (*StatsOverview, error)
	GetDailyStats(ctx context.Context, token string) ([]DailyStat, error)
	GetWalletBalances(ctx context.Context, token string) (*WalletBalances, error)

	ListTrades(ctx context.Context, token string, q ListQuery) (*TradePage, error)
	GetTradeStats(ctx context.Context, token string) (TradeStats, error)
	ExportTrades(ctx context.Context, token string) (*Export, error)

	ListDirectionalSignals(ctx context.Context, token string, q ListQuery) (*SignalPage[DirectionalSignal], error)
	ListIndicatorSignals(ctx context.Context, token string, q ListQuery) (*SignalPage[IndicatorSignal], error)
	ExportSignals(ctx context.Context, token string) (*Export, error)
}

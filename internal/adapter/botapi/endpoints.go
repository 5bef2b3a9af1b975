package botapi

import "strings"

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "https://wbtx.onrender.com"

// AuthEndpoints are the authentication URLs
type AuthEndpoints struct {
	Login    string
	Register string
}

// BotEndpoints control the bot process
type BotEndpoints struct {
	Start string
	Stop  string
}

// StatsEndpoints serve the dashboard figures
type StatsEndpoints struct {
	Overview string
	Daily    string
}

// TradeEndpoints serve the trade history
type TradeEndpoints struct {
	List   string
	Export string
	Stats  string
}

// SignalEndpoints serve the signal history
type SignalEndpoints struct {
	List   string
	Export string
}

// WalletEndpoints serve wallet balances
type WalletEndpoints struct {
	Balances string
}

// Endpoints maps each logical backend operation to an absolute address.
// It is built once at startup and never mutated.
type Endpoints struct {
	Auth      AuthEndpoints
	Bot       BotEndpoints
	Stats     StatsEndpoints
	Trades    TradeEndpoints
	Signals   SignalEndpoints
	Wallet    WalletEndpoints
	WebSocket string
}

// NewEndpoints builds the registry from one base URL. wsURL overrides the
// status channel address; when empty it is derived from the base URL with a
// ws/wss scheme.
func NewEndpoints(baseURL, wsURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	if wsURL == "" {
		wsURL = websocketURL(base)
	}

	return Endpoints{
		Auth: AuthEndpoints{
			Login:    base + "/auth/login",
			Register: base + "/auth/register",
		},
		Bot: BotEndpoints{
			Start: base + "/bot/start",
			Stop:  base + "/bot/stop",
		},
		Stats: StatsEndpoints{
			Overview: base + "/stats",
			Daily:    base + "/stats/daily",
		},
		Trades: TradeEndpoints{
			List:   base + "/trades",
			Export: base + "/trades/csv",
			Stats:  base + "/trades/stats",
		},
		Signals: SignalEndpoints{
			List:   base + "/signals",
			Export: base + "/signals/export",
		},
		Wallet: WalletEndpoints{
			Balances: base + "/wallet/balances",
		},
		WebSocket: wsURL,
	}
}

func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
	default:
		return "wss://" + base + "/ws"
	}
}

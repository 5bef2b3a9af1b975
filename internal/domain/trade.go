package domain

// Trade is a completed buy/sell with realised profit
type Trade struct {
	ID               int64        `json:"id"`
	Timestamp        FlexibleTime `json:"timestamp"`
	TradeType        string       `json:"trade_type"`
	EntryPrice       float64      `json:"entry_price"`
	ExitPrice        float64      `json:"exit_price"`
	ProfitUSD        float64      `json:"profit_usd"`
	ProfitPercentage float64      `json:"profit_percentage"`
}

// TradePage is one page of trades plus the total count across all pages
type TradePage struct {
	Trades []Trade `json:"trades"`
	Total  int     `json:"total"`
}

// TradeFilters are the type filter values offered on the trades page
var TradeFilters = []string{FilterAll, SideLong, SideShort}

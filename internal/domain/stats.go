package domain

// StatsOverview is the aggregate profit summary returned by GET /stats
type StatsOverview struct {
	TotalProfit     float64 `json:"total_profit"`
	TotalProfitUSD  float64 `json:"total_profit_usd"`
	WinRate         float64 `json:"win_rate"`
	AverageTradeUSD float64 `json:"average_trade_usd"`
}

// DailyStat is one point of the daily profit chart. Order is decided by the server.
type DailyStat struct {
	Day       string  `json:"day"`
	ProfitUSD float64 `json:"profit_usd"`
}

// TradeStats holds the numeric fields of GET /trades/stats keyed by name.
// The backend does not publish a fixed shape for it.
type TradeStats map[string]float64

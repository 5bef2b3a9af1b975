package dto

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"wbtxdash/internal/domain"
)

// StatsCards is the overview fragment
type StatsCards struct {
	TotalProfit  string
	WinRate      string
	AverageTrade string
}

// NewStatsCards formats the overview; nil renders zeroes
func NewStatsCards(s *domain.StatsOverview) StatsCards {
	if s == nil {
		s = &domain.StatsOverview{}
	}
	return StatsCards{
		TotalProfit:  USD(s.TotalProfitUSD),
		WinRate:      Percent(s.WinRate),
		AverageTrade: USD(s.AverageTradeUSD),
	}
}

// WalletRowView is one formatted wallet line
type WalletRowView struct {
	Token    string
	Balance  string
	USDValue string
}

// WalletView is the wallet fragment
type WalletView struct {
	Rows  []WalletRowView
	Total string
}

// NewWalletView formats the wallet table; nil renders zero balances
func NewWalletView(w *domain.WalletBalances) WalletView {
	if w == nil {
		w = &domain.WalletBalances{}
	}

	var total float64
	rows := w.Rows()
	views := make([]WalletRowView, 0, len(rows))
	for _, r := range rows {
		total += r.USDValue
		views = append(views, WalletRowView{
			Token:    r.Token,
			Balance:  Amount(r.Balance),
			USDValue: USD(r.USDValue),
		})
	}
	return WalletView{Rows: views, Total: USD(total)}
}

// DailyChart is the data handed to the daily profit chart, in server order
type DailyChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// NewDailyChart converts the daily series
func NewDailyChart(days []domain.DailyStat) DailyChart {
	chart := DailyChart{
		Labels: make([]string, 0, len(days)),
		Values: make([]float64, 0, len(days)),
	}
	for _, d := range days {
		chart.Labels = append(chart.Labels, d.Day)
		chart.Values = append(chart.Values, d.ProfitUSD)
	}
	return chart
}

// StatusView drives the bot status card and the start/stop buttons
type StatusView struct {
	Status   domain.BotStatus `json:"status"`
	Label    string           `json:"label"`
	CanStart bool             `json:"can_start"`
	CanStop  bool             `json:"can_stop"`
}

// NewStatusView derives the card from a status
func NewStatusView(s domain.BotStatus) StatusView {
	return StatusView{
		Status:   s,
		Label:    s.Label(),
		CanStart: s.CanStart(),
		CanStop:  s.CanStop(),
	}
}

// TradeStatItem is one entry of the trade summary
type TradeStatItem struct {
	Label string
	Value string
}

// NewTradeStatItems orders the summary by key and humanises the labels
func NewTradeStatItems(stats domain.TradeStats) []TradeStatItem {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]TradeStatItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, TradeStatItem{
			Label: humanise(k),
			Value: formatStat(k, stats[k]),
		})
	}
	return items
}

func humanise(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		switch w {
		case "usd":
			words[i] = "USD"
		default:
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

func formatStat(key string, v float64) string {
	switch {
	case strings.HasSuffix(key, "_usd"):
		return USD(v)
	case strings.HasSuffix(key, "_rate"), strings.HasSuffix(key, "_percentage"):
		return Percent(v)
	case v == float64(int64(v)):
		return Fixed(v, 0)
	default:
		return Fixed(v, 2)
	}
}

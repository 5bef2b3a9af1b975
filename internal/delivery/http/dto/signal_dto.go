package dto

import (
	"strings"

	"wbtxdash/internal/domain"
)

// Badge colours
const (
	badgeGreen = "bg-green-100 text-green-800"
	badgeRed   = "bg-red-100 text-red-800"
	badgeBlue  = "bg-blue-100 text-blue-800"
	badgeGray  = "bg-gray-100 text-gray-800"
)

// SignalRow is one rendered row of the signals table. Columns depend on the
// signal variant; Cells holds the plain value columns after the type badge.
type SignalRow struct {
	Timestamp   string
	Type        string
	TypeBadge   string
	Cells       []string
	Status      string
	StatusBadge string
}

// SignalTable is the signals table fragment
type SignalTable struct {
	Columns    []string
	Rows       []SignalRow
	Pagination domain.Pagination
	Filter     string
	HasStatus  bool
}

// sideBadge is green for LONG/buy and red for everything else
func sideBadge(side string) string {
	switch strings.ToLower(side) {
	case "long", "buy":
		return badgeGreen
	default:
		return badgeRed
	}
}

func statusBadge(status string) string {
	switch status {
	case domain.SignalActive:
		return badgeBlue
	case domain.SignalClosed:
		return badgeGreen
	default:
		return badgeGray
	}
}

// NewDirectionalSignalTable builds the LONG/SHORT signals table
func NewDirectionalSignalTable(page *domain.SignalPage[domain.DirectionalSignal], q domain.ListQuery) SignalTable {
	rows := make([]SignalRow, 0, len(page.Signals))
	for _, s := range page.Signals {
		rows = append(rows, SignalRow{
			Timestamp:   Timestamp(s.Timestamp.Time),
			Type:        s.SignalType,
			TypeBadge:   sideBadge(s.SignalType),
			Cells:       []string{USD(s.Price), Percent(s.Confidence)},
			Status:      s.Status,
			StatusBadge: statusBadge(s.Status),
		})
	}

	return SignalTable{
		Columns:    []string{"Time", "Type", "Price", "Confidence", "Status"},
		Rows:       rows,
		Pagination: domain.Pagination{Page: q.Page, PageSize: q.PageSize, Total: page.Total},
		Filter:     q.Type,
		HasStatus:  true,
	}
}

// NewIndicatorSignalTable builds the buy/sell indicator signals table
func NewIndicatorSignalTable(page *domain.SignalPage[domain.IndicatorSignal], q domain.ListQuery) SignalTable {
	rows := make([]SignalRow, 0, len(page.Signals))
	for _, s := range page.Signals {
		price := "-"
		if s.Price != nil {
			price = USD(*s.Price)
		}
		rows = append(rows, SignalRow{
			Timestamp: Timestamp(s.Timestamp.Time),
			Type:      strings.ToUpper(s.Type),
			TypeBadge: sideBadge(s.Type),
			Cells:     []string{price, Fixed(s.RSI, 2), Fixed(s.EMA, 2), Fixed(s.PriceSpread, 4)},
		})
	}

	return SignalTable{
		Columns:    []string{"Time", "Type", "Price", "RSI", "EMA", "Spread"},
		Rows:       rows,
		Pagination: domain.Pagination{Page: q.Page, PageSize: q.PageSize, Total: page.Total},
		Filter:     q.Type,
	}
}

// TradeRow is one rendered row of the trades table
type TradeRow struct {
	Timestamp   string
	Type        string
	TypeBadge   string
	EntryPrice  string
	ExitPrice   string
	Profit      string
	ProfitPct   string
	ProfitClass string
}

// TradeTable is the trades table fragment
type TradeTable struct {
	Rows       []TradeRow
	Pagination domain.Pagination
	Filter     string
}

// NewTradeTable builds the trades table
func NewTradeTable(page *domain.TradePage, q domain.ListQuery) TradeTable {
	rows := make([]TradeRow, 0, len(page.Trades))
	for _, t := range page.Trades {
		profitClass := "text-green-600"
		if t.ProfitUSD < 0 {
			profitClass = "text-red-600"
		}
		rows = append(rows, TradeRow{
			Timestamp:   Timestamp(t.Timestamp.Time),
			Type:        t.TradeType,
			TypeBadge:   sideBadge(t.TradeType),
			EntryPrice:  USD(t.EntryPrice),
			ExitPrice:   USD(t.ExitPrice),
			Profit:      USD(t.ProfitUSD),
			ProfitPct:   Percent(t.ProfitPercentage),
			ProfitClass: profitClass,
		})
	}

	return TradeTable{
		Rows:       rows,
		Pagination: domain.Pagination{Page: q.Page, PageSize: q.PageSize, Total: page.Total},
		Filter:     q.Type,
	}
}

// ListPage is the shell of a list page; the table itself loads as a fragment
type ListPage struct {
	Filters []string
}

package domain

import "fmt"

// SignalShape selects which of the two signal contracts the backend speaks.
// Both contracts exist in the wild and neither is authoritative.
type SignalShape string

// SignalShape values
const (
	ShapeDirectional SignalShape = "directional"
	ShapeIndicator   SignalShape = "indicator"
)

// ParseSignalShape validates a configured shape name
func ParseSignalShape(s string) (SignalShape, error) {
	switch SignalShape(s) {
	case ShapeDirectional, ShapeIndicator:
		return SignalShape(s), nil
	default:
		return "", fmt.Errorf("invalid signal shape: %q (must be directional or indicator)", s)
	}
}

// Filters returns the type filter values offered on the signals page, "ALL" first
func (s SignalShape) Filters() []string {
	if s == ShapeIndicator {
		return []string{FilterAll, "buy", "sell"}
	}
	return []string{FilterAll, SideLong, SideShort}
}

// Signal directions
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Signal statuses of the directional contract
const (
	SignalActive    = "ACTIVE"
	SignalClosed    = "CLOSED"
	SignalCancelled = "CANCELLED"
)

// DirectionalSignal is the trading-direction contract: LONG/SHORT with a
// confidence score and a lifecycle status.
type DirectionalSignal struct {
	ID         int64        `json:"id"`
	Timestamp  FlexibleTime `json:"timestamp"`
	SignalType string       `json:"signal_type"`
	Price      float64      `json:"price"`
	Confidence float64      `json:"confidence"`
	Status     string       `json:"status"`
}

// IndicatorSignal is the technical-indicator contract: buy/sell with the
// indicator values that produced it.
type IndicatorSignal struct {
	ID          int64        `json:"id"`
	Timestamp   FlexibleTime `json:"timestamp"`
	Type        string       `json:"type"`
	Price       *float64     `json:"price,omitempty"`
	RSI         float64      `json:"rsi"`
	EMA         float64      `json:"ema"`
	PriceSpread float64      `json:"price_spread"`
}

// SignalRecord constrains the signal variants
type SignalRecord interface {
	DirectionalSignal | IndicatorSignal
}

// SignalPage is one page of signals plus the total count across all pages
type SignalPage[T SignalRecord] struct {
	Signals []T `json:"signals"`
	Total   int `json:"total"`
}

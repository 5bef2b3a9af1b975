package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"wbtxdash/internal/utils"
)

// USD renders an amount as "$1234.50"
func USD(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// Amount renders a token balance with 6 decimals
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(6)
}

// Percent renders "61.50%"
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Fixed renders v with n decimals
func Fixed(v float64, n int32) string {
	return decimal.NewFromFloat(v).StringFixed(n)
}

// Timestamp renders t in the display timezone
func Timestamp(t time.Time) string {
	return utils.FormatDisplay(t)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalletBalances_Rows(t *testing.T) {
	w := WalletBalances{
		BNB:    2,
		USDT:   150.5,
		WBTC:   0.5,
		Prices: map[string]float64{TokenBNB: 600},
	}

	rows := w.Rows()
	assert.Equal(t, []string{TokenBNB, TokenUSDT, TokenWBTC}, []string{rows[0].Token, rows[1].Token, rows[2].Token})
	assert.InDelta(t, 1200.0, rows[0].USDValue, 1e-9)
	assert.InDelta(t, 150.5, rows[1].USDValue, 1e-9)
	assert.Zero(t, rows[2].USDValue, "missing price counts as 0")
}

func TestWalletBalances_NilPrices(t *testing.T) {
	w := WalletBalances{BNB: 1, USDT: 3}
	assert.Zero(t, w.Price(TokenBNB))
	assert.Equal(t, 1.0, w.Price(TokenUSDT))
	assert.InDelta(t, 3.0, w.Rows()[1].USDValue, 1e-9)
}

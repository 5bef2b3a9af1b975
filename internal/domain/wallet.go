package domain

// Wallet tokens, in display order
const (
	TokenBNB  = "BNB"
	TokenUSDT = "USDT"
	TokenWBTC = "WBTC"
)

// WalletBalances is the response of GET /wallet/balances.
// Prices may omit any token; a missing price counts as 0.
type WalletBalances struct {
	BNB    float64            `json:"BNB"`
	USDT   float64            `json:"USDT"`
	WBTC   float64            `json:"WBTC"`
	Prices map[string]float64 `json:"prices"`
}

// WalletRow is one line of the wallet table
type WalletRow struct {
	Token    string
	Balance  float64
	USDValue float64
}

// Price returns the USD price of a token. USDT is pegged at 1.
func (w WalletBalances) Price(token string) float64 {
	if token == TokenUSDT {
		return 1
	}
	if w.Prices == nil {
		return 0
	}
	return w.Prices[token]
}

// Rows derives the wallet table: USD value = balance x price
func (w WalletBalances) Rows() []WalletRow {
	balances := []struct {
		token   string
		balance float64
	}{
		{TokenBNB, w.BNB},
		{TokenUSDT, w.USDT},
		{TokenWBTC, w.WBTC},
	}

	rows := make([]WalletRow, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, WalletRow{
			Token:    b.token,
			Balance:  b.balance,
			USDValue: b.balance * w.Price(b.token),
		})
	}
	return rows
}

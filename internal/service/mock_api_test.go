package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"wbtxdash/internal/domain"
)

// mockBotAPI is a testify mock of domain.BotAPI
type mockBotAPI struct {
	mock.Mock
}

func (m *mockBotAPI) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockBotAPI) Register(ctx context.Context, creds domain.Credentials) error {
	return m.Called(ctx, creds).Error(0)
}

func (m *mockBotAPI) StartBot(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockBotAPI) StopBot(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockBotAPI) GetStats(ctx context.Context, token string) (*domain.StatsOverview, error) {
	args := m.Called(ctx, token)
	stats, _ := args.Get(0).(*domain.StatsOverview)
	return stats, args.Error(1)
}

func (m *mockBotAPI) GetDailyStats(ctx context.Context, token string) ([]domain.DailyStat, error) {
	args := m.Called(ctx, token)
	daily, _ := args.Get(0).([]domain.DailyStat)
	return daily, args.Error(1)
}

func (m *mockBotAPI) GetWalletBalances(ctx context.Context, token string) (*domain.WalletBalances, error) {
	args := m.Called(ctx, token)
	balances, _ := args.Get(0).(*domain.WalletBalances)
	return balances, args.Error(1)
}

func (m *mockBotAPI) ListTrades(ctx context.Context, token string, q domain.ListQuery) (*domain.TradePage, error) {
	args := m.Called(ctx, token, q)
	page, _ := args.Get(0).(*domain.TradePage)
	return page, args.Error(1)
}

func (m *mockBotAPI) GetTradeStats(ctx context.Context, token string) (domain.TradeStats, error) {
	args := m.Called(ctx, token)
	stats, _ := args.Get(0).(domain.TradeStats)
	return stats, args.Error(1)
}

func (m *mockBotAPI) ExportTrades(ctx context.Context, token string) (*domain.Export, error) {
	args := m.Called(ctx, token)
	export, _ := args.Get(0).(*domain.Export)
	return export, args.Error(1)
}

func (m *mockBotAPI) ListDirectionalSignals(ctx context.Context, token string, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error) {
	args := m.Called(ctx, token, q)
	page, _ := args.Get(0).(*domain.SignalPage[domain.DirectionalSignal])
	return page, args.Error(1)
}

func (m *mockBotAPI) ListIndicatorSignals(ctx context.Context, token string, q domain.ListQuery) (*domain.SignalPage[domain.IndicatorSignal], error) {
	args := m.Called(ctx, token, q)
	page, _ := args.Get(0).(*domain.SignalPage[domain.IndicatorSignal])
	return page, args.Error(1)
}

func (m *mockBotAPI) ExportSignals(ctx context.Context, token string) (*domain.Export, error) {
	args := m.Called(ctx, token)
	export, _ := args.Get(0).(*domain.Export)
	return export, args.Error(1)
}

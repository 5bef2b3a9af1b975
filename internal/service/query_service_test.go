package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbtxdash/internal/domain"
	"wbtxdash/internal/repository"
)

func newQueryService(api domain.BotAPI, ttl time.Duration) *QueryService {
	logger, _ := test.NewNullLogger()
	return NewQueryService(api, repository.NewMemoryQueryCache(), ttl, logger)
}

func TestQueryService_CachesPerSession(t *testing.T) {
	ctx := context.Background()
	api := new(mockBotAPI)
	api.On("GetStats", ctx, "tok-a").Return(&domain.StatsOverview{WinRate: 60}, nil).Once()
	api.On("GetStats", ctx, "tok-b").Return(&domain.StatsOverview{WinRate: 40}, nil).Once()

	svc := newQueryService(api, time.Minute)
	a := Requester{SessionID: uuid.New(), Token: "tok-a"}
	b := Requester{SessionID: uuid.New(), Token: "tok-b"}

	for i := 0; i < 3; i++ {
		stats, err := svc.Stats(ctx, a)
		require.NoError(t, err)
		assert.InDelta(t, 60.0, stats.WinRate, 1e-9)
	}

	stats, err := svc.Stats(ctx, b)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, stats.WinRate, 1e-9)

	api.AssertExpectations(t)
}

func TestQueryService_KeysIncludeViewState(t *testing.T) {
	ctx := context.Background()
	api := new(mockBotAPI)
	r := Requester{SessionID: uuid.New(), Token: "tok"}

	page1 := domain.ListQuery{Page: 1, PageSize: 10, Type: "ALL"}
	page2 := domain.ListQuery{Page: 2, PageSize: 10, Type: "ALL"}
	api.On("ListTrades", ctx, "tok", page1).Return(&domain.TradePage{Trades: []domain.Trade{{ID: 1}}, Total: 25}, nil).Once()
	api.On("ListTrades", ctx, "tok", page2).Return(&domain.TradePage{Trades: []domain.Trade{{ID: 11}}, Total: 25}, nil).Once()

	svc := newQueryService(api, time.Minute)

	got, err := svc.Trades(ctx, r, page1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Trades[0].ID)

	got, err = svc.Trades(ctx, r, page2)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.Trades[0].ID)

	got, err = svc.Trades(ctx, r, page1)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Total)

	api.AssertExpectations(t)
}

func TestQueryService_AnonymousAndErrorsBypassCache(t *testing.T) {
	ctx := context.Background()
	api := new(mockBotAPI)
	api.On("GetWalletBalances", ctx, "").Return(&domain.WalletBalances{USDT: 5}, nil).Twice()
	api.On("GetDailyStats", ctx, "tok").Return(nil, errors.New("boom")).Twice()

	svc := newQueryService(api, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := svc.Wallet(ctx, Requester{})
		require.NoError(t, err)
	}

	r := Requester{SessionID: uuid.New(), Token: "tok"}
	for i := 0; i < 2; i++ {
		_, err := svc.DailyStats(ctx, r)
		require.Error(t, err)
	}

	api.AssertExpectations(t)
}

func TestQueryService_SignalTimestampsSurviveCache(t *testing.T) {
	ctx := context.Background()
	api := new(mockBotAPI)
	q := domain.ListQuery{Page: 1, PageSize: 10, Type: "ALL"}
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	page := &domain.SignalPage[domain.DirectionalSignal]{
		Signals: []domain.DirectionalSignal{{ID: 7, Timestamp: domain.FlexibleTime{Time: ts}, SignalType: "LONG"}},
		Total:   1,
	}
	api.On("ListDirectionalSignals", ctx, "tok", q).Return(page, nil).Once()

	svc := newQueryService(api, time.Minute)
	r := Requester{SessionID: uuid.New(), Token: "tok"}

	_, err := svc.DirectionalSignals(ctx, r, q)
	require.NoError(t, err)
	cachedPage, err := svc.DirectionalSignals(ctx, r, q)
	require.NoError(t, err)

	require.Len(t, cachedPage.Signals, 1)
	assert.True(t, cachedPage.Signals[0].Timestamp.Equal(ts))
	api.AssertExpectations(t)
}

func TestQueryService_ExportsAreNeverCached(t *testing.T) {
	ctx := context.Background()
	api := new(mockBotAPI)
	api.On("ExportSignals", ctx, "tok").Return(&domain.Export{Filename: "signals.csv"}, nil).Twice()

	svc := newQueryService(api, time.Minute)
	r := Requester{SessionID: uuid.New(), Token: "tok"}

	for i := 0; i < 2; i++ {
		export, err := svc.ExportSignals(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, "signals.csv", export.Filename)
	}
	api.AssertExpectations(t)
}

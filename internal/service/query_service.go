package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// Requester identifies who a query runs for
type Requester struct {
	SessionID uuid.UUID
	Token     string
}

// QueryService reads dashboard data through the query cache. Entries are
// keyed by session, resource and view state; anonymous requests bypass the
// cache. Exports are never cached.
type QueryService struct {
	api   domain.BotAPI
	cache domain.QueryCache
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewQueryService creates a new QueryService. A non-positive ttl disables
// caching.
func NewQueryService(api domain.BotAPI, cache domain.QueryCache, ttl time.Duration, logger logrus.FieldLogger) *QueryService {
	return &QueryService{
		api:   api,
		cache: cache,
		ttl:   ttl,
		log:   logger.WithField("component", "query"),
	}
}

// SessionQueryPrefix is the cache key prefix shared by all of a session's queries
func SessionQueryPrefix(sessionID uuid.UUID) string {
	return "query:" + sessionID.String() + ":"
}

func queryKey(r Requester, resource, params string) string {
	return SessionQueryPrefix(r.SessionID) + resource + ":" + params
}

func listParams(q domain.ListQuery) string {
	return fmt.Sprintf("page=%d&size=%d&type=%s", q.Page, q.PageSize, q.Type)
}

func cached[T any](ctx context.Context, s *QueryService, r Requester, key string, fetch func() (T, error)) (T, error) {
	useCache := s.ttl > 0 && r.SessionID != uuid.Nil

	if useCache {
		if data, ok := s.cache.Get(ctx, key); ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
		}
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	if useCache {
		data, err := json.Marshal(v)
		if err == nil {
			err = s.cache.Set(ctx, key, data, s.ttl)
		}
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("Failed to cache query")
		}
	}
	return v, nil
}

// Stats returns the profit overview
func (s *QueryService) Stats(ctx context.Context, r Requester) (*domain.StatsOverview, error) {
	return cached(ctx, s, r, queryKey(r, "stats", ""), func() (*domain.StatsOverview, error) {
		return s.api.GetStats(ctx, r.Token)
	})
}

// DailyStats returns the daily profit series
func (s *QueryService) DailyStats(ctx context.Context, r Requester) ([]domain.DailyStat, error) {
	return cached(ctx, s, r, queryKey(r, "daily", ""), func() ([]domain.DailyStat, error) {
		return s.api.GetDailyStats(ctx, r.Token)
	})
}

// Wallet returns token balances and prices
func (s *QueryService) Wallet(ctx context.Context, r Requester) (*domain.WalletBalances, error) {
	return cached(ctx, s, r, queryKey(r, "wallet", ""), func() (*domain.WalletBalances, error) {
		return s.api.GetWalletBalances(ctx, r.Token)
	})
}

// Trades returns one page of trades
func (s *QueryService) Trades(ctx context.Context, r Requester, q domain.ListQuery) (*domain.TradePage, error) {
	return cached(ctx, s, r, queryKey(r, "trades", listParams(q)), func() (*domain.TradePage, error) {
		return s.api.ListTrades(ctx, r.Token, q)
	})
}

// TradeStats returns the trade summary
func (s *QueryService) TradeStats(ctx context.Context, r Requester) (domain.TradeStats, error) {
	return cached(ctx, s, r, queryKey(r, "trade_stats", ""), func() (domain.TradeStats, error) {
		return s.api.GetTradeStats(ctx, r.Token)
	})
}

// DirectionalSignals returns one page of LONG/SHORT signals
func (s *QueryService) DirectionalSignals(ctx context.Context, r Requester, q domain.ListQuery) (*domain.SignalPage[domain.DirectionalSignal], error) {
	return cached(ctx, s, r, queryKey(r, "directional_signals", listParams(q)), func() (*domain.SignalPage[domain.DirectionalSignal], error) {
		return s.api.ListDirectionalSignals(ctx, r.Token, q)
	})
}

// IndicatorSignals returns one page of buy/sell signals
func (s *QueryService) IndicatorSignals(ctx context.Context, r Requester, q domain.ListQuery) (*domain.SignalPage[domain.IndicatorSignal], error) {
	return cached(ctx, s, r, queryKey(r, "indicator_signals", listParams(q)), func() (*domain.SignalPage[domain.IndicatorSignal], error) {
		return s.api.ListIndicatorSignals(ctx, r.Token, q)
	})
}

// ExportSignals fetches the signals file fresh from the API
func (s *QueryService) ExportSignals(ctx context.Context, r Requester) (*domain.Export, error) {
	return s.api.ExportSignals(ctx, r.Token)
}

// ExportTrades fetches the trades file fresh from the API
func (s *QueryService) ExportTrades(ctx context.Context, r Requester) (*domain.Export, error) {
	return s.api.ExportTrades(ctx, r.Token)
}

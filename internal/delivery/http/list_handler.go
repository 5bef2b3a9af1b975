package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/delivery/http/dto"
	"wbtxdash/internal/domain"
	"wbtxdash/internal/service"
)

// Views fenced against out-of-order responses
const (
	viewSignals = "signals"
	viewTrades  = "trades"
)

// ListHandler serves the paginated signals and trades pages
type ListHandler struct {
	queries *service.QueryService
	fence   *service.RequestFence
	shape   domain.SignalShape
	log     logrus.FieldLogger
}

// NewListHandler creates a new ListHandler
func NewListHandler(queries *service.QueryService, fence *service.RequestFence, shape domain.SignalShape, logger logrus.FieldLogger) *ListHandler {
	return &ListHandler{
		queries: queries,
		fence:   fence,
		shape:   shape,
		log:     logger.WithField("handler", "list"),
	}
}

// listQuery reads page and type from the query string
func listQuery(c echo.Context, allowed []string) domain.ListQuery {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	return domain.NewListQuery(page, c.QueryParam("type"), allowed)
}

// fenced runs fetch and reports whether its result is still the latest for
// the session's view. Anonymous requests share no state and are never fenced.
func (h *ListHandler) fenced(sessionID uuid.UUID, view string, fetch func()) bool {
	if sessionID == uuid.Nil {
		fetch()
		return true
	}
	gen := h.fence.Next(sessionID, view)
	fetch()
	return h.fence.IsLatest(sessionID, view, gen)
}

// Signals renders the signals page shell
// GET /signals
func (h *ListHandler) Signals(c echo.Context) error {
	return c.Render(http.StatusOK, "signals", newPage(c, "Signals", "signals", dto.ListPage{Filters: h.shape.Filters()}))
}

// SignalsTable renders one page of signals in the configured variant
// GET /signals/table
func (h *ListHandler) SignalsTable(c echo.Context) error {
	ctx := c.Request().Context()
	r := requester(c)
	q := listQuery(c, h.shape.Filters())

	var (
		table dto.SignalTable
		err   error
	)
	latest := h.fenced(r.SessionID, viewSignals, func() {
		if h.shape == domain.ShapeIndicator {
			var page *domain.SignalPage[domain.IndicatorSignal]
			if page, err = h.queries.IndicatorSignals(ctx, r, q); err == nil {
				table = dto.NewIndicatorSignalTable(page, q)
			}
			return
		}
		var page *domain.SignalPage[domain.DirectionalSignal]
		if page, err = h.queries.DirectionalSignals(ctx, r, q); err == nil {
			table = dto.NewDirectionalSignalTable(page, q)
		}
	})
	if !latest {
		return discardStale(c)
	}

	if err != nil {
		h.log.WithError(err).WithField("page", q.Page).Error("Failed to fetch signals")
		notify(c, LevelError, MsgSignalsFailed)
		table = h.emptySignalTable(q)
	}
	return c.Render(http.StatusOK, "signals_table", table)
}

func (h *ListHandler) emptySignalTable(q domain.ListQuery) dto.SignalTable {
	if h.shape == domain.ShapeIndicator {
		return dto.NewIndicatorSignalTable(&domain.SignalPage[domain.IndicatorSignal]{}, q)
	}
	return dto.NewDirectionalSignalTable(&domain.SignalPage[domain.DirectionalSignal]{}, q)
}

// ExportSignals streams the signals CSV as a download
// GET /signals/export
func (h *ListHandler) ExportSignals(c echo.Context) error {
	export, err := h.queries.ExportSignals(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Error("Failed to export signals")
		return redirectWithNotice(c, "/signals", LevelError, MsgSignalExportFailed)
	}
	return attachment(c, export)
}

// Trades renders the trades page shell
// GET /trades
func (h *ListHandler) Trades(c echo.Context) error {
	return c.Render(http.StatusOK, "trades", newPage(c, "Trades", "trades", dto.ListPage{Filters: domain.TradeFilters}))
}

// TradesTable renders one page of trades
// GET /trades/table
func (h *ListHandler) TradesTable(c echo.Context) error {
	ctx := c.Request().Context()
	r := requester(c)
	q := listQuery(c, domain.TradeFilters)

	var (
		page *domain.TradePage
		err  error
	)
	latest := h.fenced(r.SessionID, viewTrades, func() {
		page, err = h.queries.Trades(ctx, r, q)
	})
	if !latest {
		return discardStale(c)
	}

	if err != nil {
		h.log.WithError(err).WithField("page", q.Page).Error("Failed to fetch trades")
		notify(c, LevelError, MsgTradesFailed)
		page = &domain.TradePage{}
	}
	return c.Render(http.StatusOK, "trades_table", dto.NewTradeTable(page, q))
}

// TradeStats renders the trade summary, empty when the request fails
// GET /trades/stats
func (h *ListHandler) TradeStats(c echo.Context) error {
	stats, err := h.queries.TradeStats(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Warn("Failed to fetch trade stats")
		stats = nil
	}
	return c.Render(http.StatusOK, "trade_stats", dto.NewTradeStatItems(stats))
}

// ExportTrades streams the trades CSV as a download
// GET /trades/export
func (h *ListHandler) ExportTrades(c echo.Context) error {
	export, err := h.queries.ExportTrades(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Error("Failed to export trades")
		return redirectWithNotice(c, "/trades", LevelError, MsgTradeExportFailed)
	}
	return attachment(c, export)
}

func attachment(c echo.Context, export *domain.Export) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename))
	return c.Blob(http.StatusOK, export.ContentType, export.Body)
}

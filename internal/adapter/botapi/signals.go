package botapi

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"wbtxdash/internal/domain"
)

// normalizeList decodes a list response that is either a bare JSON array or
// an object wrapping the array under key next to a "total" count. A bare
// array's total is its length. Anything else yields an empty list, a zero
// total and ErrUnexpectedShape.
func normalizeList[T any](raw []byte, key string) ([]T, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, 0, errors.Wrap(ErrUnexpectedShape, "empty body")
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "decode %s array: %v", key, err)
		}
		return items, len(items), nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "decode %s object: %v", key, err)
		}

		rawItems, ok := wrapper[key]
		if !ok {
			return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "object has no %q list", key)
		}

		var items []T
		if err := json.Unmarshal(rawItems, &items); err != nil {
			return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "decode %s list: %v", key, err)
		}
		if items == nil {
			items = []T{}
		}

		total := len(items)
		if rawTotal, ok := wrapper["total"]; ok {
			if err := json.Unmarshal(rawTotal, &total); err != nil {
				return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "decode %s total: %v", key, err)
			}
		}
		return items, total, nil
	}

	return []T{}, 0, errors.Wrapf(ErrUnexpectedShape, "%s response is neither a list nor an object", key)
}

// NormalizeSignals decodes a signals list response of either variant
func NormalizeSignals[T domain.SignalRecord](raw []byte) (*domain.SignalPage[T], error) {
	signals, total, err := normalizeList[T](raw, "signals")
	return &domain.SignalPage[T]{Signals: signals, Total: total}, err
}

// NormalizeTrades decodes a trades list response
func NormalizeTrades(raw []byte) (*domain.TradePage, error) {
	trades, total, err := normalizeList[domain.Trade](raw, "trades")
	return &domain.TradePage{Trades: trades, Total: total}, err
}

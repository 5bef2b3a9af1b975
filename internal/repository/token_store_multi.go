package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// MultiTokenStore fans token operations out to every configured store.
// Writes go to all stores, reads return the first hit and deletes remove
// from all.
type MultiTokenStore struct {
	stores []domain.TokenStore
	log    logrus.FieldLogger
}

// NewMultiTokenStore chains stores in read order
func NewMultiTokenStore(logger logrus.FieldLogger, stores ...domain.TokenStore) *MultiTokenStore {
	return &MultiTokenStore{
		stores: stores,
		log:    logger.WithField("component", "tokenstore"),
	}
}

// Save writes to every store. It fails only when no store accepted the
// session.
func (m *MultiTokenStore) Save(ctx context.Context, session *domain.Session) error {
	var errs []error
	for _, store := range m.stores {
		if err := store.Save(ctx, session); err != nil {
			m.log.WithError(err).Warn("Token store rejected session")
			errs = append(errs, err)
		}
	}

	if len(errs) == len(m.stores) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Get returns the first store's hit and copies it into the stores that missed
func (m *MultiTokenStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	for i, store := range m.stores {
		session, err := store.Get(ctx, sessionID)
		if err == nil {
			m.backfill(ctx, i, session)
			return session, nil
		}
		if !errors.Is(err, domain.ErrTokenNotFound) {
			m.log.WithError(err).Warn("Token store lookup failed")
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (m *MultiTokenStore) backfill(ctx context.Context, hit int, session *domain.Session) {
	for _, store := range m.stores[:hit] {
		if err := store.Save(ctx, session); err != nil {
			m.log.WithError(err).Debug("Token store backfill failed")
		}
	}
}

// Delete removes the session from every store
func (m *MultiTokenStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	var errs []error
	for _, store := range m.stores {
		if err := store.Delete(ctx, sessionID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteExpired sweeps every store and returns the total removed
func (m *MultiTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, store := range m.stores {
		n, err := store.DeleteExpired(ctx, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

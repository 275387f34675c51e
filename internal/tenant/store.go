// Package tenant resolves a tenant identifier to a handle on that tenant's
// isolated data store. Handles are resolved once per request by the service
// layer and reused for every sub-operation of that request; no ticket,
// activity or intervention is ever visible across tenant boundaries.
package tenant

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/atlasdesk/support-service/internal/config"
	"github.com/atlasdesk/support-service/internal/persistence"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// Store yields query and transaction handles scoped to one tenant's storage.
type Store interface {
	// Handle returns a query handle for the tenant's store.
	Handle(ctx context.Context, tenantID string) (persistence.Querier, error)
	// WithTx runs fn inside a transaction on the tenant's store. The
	// transaction is committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, tenantID string, fn func(q persistence.Querier) error) error
}

// PoolStore maps tenant ids to lazily opened pgx pools. Pools are keyed in an
// explicit map guarded by a mutex, not ambient package state.
type PoolStore struct {
	mu     sync.Mutex
	dsns   map[string]string
	pools  map[string]*pgxpool.Pool
	cfg    config.PostgresConfig
	logger *zap.Logger
}

// NewPoolStore builds a store over the configured tenant DSN map.
func NewPoolStore(dsns map[string]string, cfg config.PostgresConfig, logger *zap.Logger) *PoolStore {
	return &PoolStore{
		dsns:   dsns,
		pools:  make(map[string]*pgxpool.Pool),
		cfg:    cfg,
		logger: logger,
	}
}

// Handle implements Store.
func (s *PoolStore) Handle(ctx context.Context, tenantID string) (persistence.Querier, error) {
	pool, err := s.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// WithTx implements Store.
func (s *PoolStore) WithTx(ctx context.Context, tenantID string, fn func(q persistence.Querier) error) error {
	pool, err := s.pool(ctx, tenantID)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return apperrors.NewDependencyFailure("tenant store transaction failed", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PoolStore) pool(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pool, ok := s.pools[tenantID]; ok {
		return pool, nil
	}
	dsn, ok := s.dsns[tenantID]
	if !ok {
		return nil, apperrors.NewDependencyFailure("unknown tenant", nil)
	}
	pool, err := persistence.OpenPool(ctx, dsn, s.cfg, s.logger.With(zap.String("tenant", tenantID)))
	if err != nil {
		return nil, apperrors.NewDependencyFailure("tenant store unavailable", err)
	}
	s.pools[tenantID] = pool
	return pool, nil
}

// Tenants lists the configured tenant ids.
func (s *PoolStore) Tenants() []string {
	ids := make([]string, 0, len(s.dsns))
	for id := range s.dsns {
		ids = append(ids, id)
	}
	return ids
}

// Close releases all opened pools.
func (s *PoolStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pool := range s.pools {
		pool.Close()
	}
	s.pools = make(map[string]*pgxpool.Pool)
}

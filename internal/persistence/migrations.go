package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

const migrationsDir = "migrations"

// RunMigrations executes the SQL migrations located in the /migrations
// directory against one tenant store, in filename order. Migration files are
// idempotent (CREATE ... IF NOT EXISTS), so re-running on boot is safe.
func RunMigrations(ctx context.Context, q Querier, tenantID string, logger *zap.Logger) error {
	if q == nil {
		logger.Warn("no store handle available; skipping migrations", zap.String("tenant", tenantID))
		return nil
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)

	for _, name := range filenames {
		path := filepath.Join(migrationsDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("tenant", tenantID), zap.String("file", name))
		if _, err := q.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info("migrations applied", zap.String("tenant", tenantID), zap.Int("count", len(filenames)))
	return nil
}

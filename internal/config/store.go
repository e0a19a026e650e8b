package config

import (
	"context"
	"fmt"

	"route_tracker/internal/storage"
)

// OpenStore builds the key-value store named by cfg.StorageDriver. The
// returned close func is never nil.
func OpenStore(ctx context.Context, cfg Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case StorageMemory:
		return storage.NewMemoryStore(), noop, nil
	case StorageSQLite, "":
		s, err := storage.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case StoragePostgres:
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		return storage.NewGormStore(db), sqlDB.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/config"
	"github.com/soaringjerry/Jornada/internal/db"
	"github.com/soaringjerry/Jornada/internal/kv"
	"github.com/soaringjerry/Jornada/internal/services"
)

// slot is a key-value backend the process owns.
type slot interface {
	services.KeyValue
	Ping(ctx context.Context) error
	Close() error
}

type memorySlot struct{ *kv.Memory }

func (memorySlot) Ping(context.Context) error { return nil }
func (memorySlot) Close() error               { return nil }

func openSlot(ctx context.Context, cfg *config.Config, log *zap.Logger) (slot, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memorySlot{kv.NewMemory()}, nil
	case config.DriverSQLite:
		s, err := db.OpenSQLite(cfg.Store.SQLitePath, cfg.Store.MigrationsDir, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		r, err := kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// openReports wires the report service over the configured slot. Events are
// not published from CLI commands.
func openReports(ctx context.Context, cfg *config.Config, log *zap.Logger, events services.EventPublisher) (*services.ReportService, slot, error) {
	s, err := openSlot(ctx, cfg, log.Named("store"))
	if err != nil {
		return nil, nil, err
	}
	store := services.NewSlotReportStore(s, cfg.Store.Key, log.Named("store"))
	return services.NewReportService(store, events, log.Named("reports")), s, nil
}

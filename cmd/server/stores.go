package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/postgres"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
)

type primaryStores struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	ping  monitor.Pinger
}

// openStores connects the task and user store selected by DATABASE_DRIVER.
func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*primaryStores, error) {
	if cfg.Database.Driver == config.DriverSQLite {
		db, err := sqliteInfra.NewDB(cfg.Database.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		manager.Register("sqlite", func(context.Context) error {
			return sqlDB.Close()
		})
		return &primaryStores{
			tasks: sqliteRepo.NewTaskRepository(db),
			users: sqliteRepo.NewUserRepository(db),
			ping:  monitor.PingFunc(sqlDB.PingContext),
		}, nil
	}

	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		return nil, err
	}
	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})
	return &primaryStores{
		tasks: postgres.NewTaskRepository(pool),
		users: postgres.NewUserRepository(pool),
		ping:  pool,
	}, nil
}

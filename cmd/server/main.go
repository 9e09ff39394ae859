package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/infrastructure/snapshot"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/token"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	leaderboardUC "github.com/fastygo/taskboard/usecase/leaderboard"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Listen(context.Background())
	defer stop()

	stores, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("primary store unavailable", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	snapshotStore, err := snapshot.Open(cfg.Leaderboard.SnapshotPath, "snapshots")
	if err != nil {
		zapLogger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	manager.Register("snapshots", func(ctx context.Context) error {
		return snapshotStore.Close()
	})

	redisPing := monitor.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	mon := monitor.New(stores.ping, redisPing, snapshotStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	issuer, err := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		zapLogger.Fatal("token issuer", zap.Error(err))
	}

	userRepo := stores.users
	taskRepo := stores.tasks
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	taskCache := redisRepo.NewTaskCache(redisClient, cfg.Cache.TaskListTTL)

	authUseCase := authUC.New(userRepo, sessionRepo, issuer, authUC.Config{
		SessionTTL:        cfg.Auth.SessionTTL,
		BcryptCost:        cfg.Auth.BcryptCost,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, taskCache, zapLogger)
	leaderboardUseCase := leaderboardUC.New(taskRepo, userRepo, snapshotStore, leaderboardUC.Config{
		FallbackName:      cfg.Leaderboard.FallbackName,
		LookupConcurrency: cfg.Leaderboard.LookupConcurrency,
		SnapshotLimit:     cfg.Leaderboard.SnapshotLimit,
	}, zapLogger)

	scheduler := services.NewSnapshotScheduler(
		leaderboardUseCase,
		profileUseCase,
		snapshotStore,
		mon,
		zapLogger,
		services.SchedulerConfig{
			Interval:  cfg.Leaderboard.SnapshotInterval,
			Retention: cfg.Leaderboard.SnapshotRetention,
		},
	)
	scheduler.Start()
	manager.Register("snapshot_scheduler", func(ctx context.Context) error {
		scheduler.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:     apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:        apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Leaderboard: apiHandler.NewLeaderboardHandler(leaderboardUseCase, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(issuer, authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

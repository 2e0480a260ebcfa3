package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shop-ledger/internal/config"
	"shop-ledger/internal/database"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/lock"
	"shop-ledger/internal/server"
	"shop-ledger/internal/store"
	"shop-ledger/internal/store/gormstore"
	"shop-ledger/internal/store/memory"
	"shop-ledger/internal/store/mongostore"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		return memory.New(), nil
	case "mongo":
		client, err := database.OpenMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return mongostore.New(client, cfg.MongoDatabase, cfg.MongoTransactions, config.GetLogger()), nil
	default:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		return gormstore.New(db), nil
	}
}

func openLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func()) {
	if cfg.RedisAddress == "" {
		return lock.NewLocal(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := rdb.Ping(ctx).Err(); err != nil {
		config.GetLogger().WithError(err).Fatal("redis ping failed")
	}
	config.GetLogger().WithField("address", cfg.RedisAddress).Info("customer locks are held in redis")
	return lock.NewRedis(rdb, cfg.LockTTL), func() { _ = rdb.Close() }
}

func main() {
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	log := config.GetLogger()

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("could not open store")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	locker, closeLocker := openLocker(ctx, cfg)
	defer closeLocker()

	svc := ledger.New(st, locker, cfg.Currency)
	app := server.New(cfg, st, svc)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

package main

import (
	"context"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/ariefcatur/go-bookstore-carts/internal/config"
	kafkax "github.com/ariefcatur/go-bookstore-carts/internal/kafka"
	"github.com/ariefcatur/go-bookstore-carts/internal/logger"
	"github.com/ariefcatur/go-bookstore-carts/internal/postgres"
	"github.com/ariefcatur/go-bookstore-carts/internal/redisx"
	"github.com/ariefcatur/go-bookstore-carts/internal/sales"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-sales"
	lg := logger.New(logger.Options{Service: name, Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMax)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis (dedup event)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &sales.Service{
		Repo:        &sales.Repo{DB: db},
		Redis:       rdb,
		ServiceName: name,
		Log:         lg,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SalesGroup, carts.TopicCheckoutCompleted, cfg.SalesWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("sales consumer started", "group", cfg.SalesGroup, "topic", carts.TopicCheckoutCompleted, "workers", cfg.SalesWorkers)
		return cons.Start(gctx, svc.HandleCheckoutCompleted)
	})

	if err := g.Wait(); err != nil {
		lg.Error("consumer exit", "err", err)
		os.Exit(1)
	}
	lg.Info("sales consumer stopped")
}

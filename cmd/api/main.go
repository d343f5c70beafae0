package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/ariefcatur/go-bookstore-carts/internal/catalog"
	"github.com/ariefcatur/go-bookstore-carts/internal/config"
	"github.com/ariefcatur/go-bookstore-carts/internal/directory"
	"github.com/ariefcatur/go-bookstore-carts/internal/httpx"
	kafkax "github.com/ariefcatur/go-bookstore-carts/internal/kafka"
	"github.com/ariefcatur/go-bookstore-carts/internal/logger"
	"github.com/ariefcatur/go-bookstore-carts/internal/metrics"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
	"github.com/ariefcatur/go-bookstore-carts/internal/postgres"
	"github.com/ariefcatur/go-bookstore-carts/internal/redisx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	lg := logger.New(logger.Options{Service: cfg.ServiceName, Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMax)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Catalog dimuat sekali, immutable selama proses hidup
	cat, err := catalog.Load(ctx, &catalog.Repo{DB: db})
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	lg.Info("catalog loaded", "books", cat.Len())

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	bus := kafkax.NewBus(cfg.KafkaBrokers, []string{
		carts.TopicCartCreated,
		carts.TopicCheckoutCompleted,
		carts.TopicCheckoutFailed,
	}, 1024)
	bus.Start(ctx)

	reg, err := carts.NewRegistry(carts.Options{
		Users:     &directory.Repo{DB: db},
		Store:     &redisx.CartStore{Redis: rdb},
		Catalog:   cat,
		Processor: payment.NewMerchant(gateway(cfg.PaymentGateway, db)),
		Events:    bus,
		Log:       lg,
		TTL:       cfg.CartTTL,
		Service:   cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)
	router := httpx.NewRouter(m, prometheus.DefaultGatherer)
	ch := &httpx.CartsHandler{
		Registry: reg,
		Replies:  &redisx.ReplyCache{Redis: rdb},
		Metrics:  m,
		Log:      lg,
	}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down...")
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server exit", "err", err)
	}
	// flush sisa event setelah HTTP berhenti. Handler yang masih jalan karena
	// Shutdown timeout dapat ErrProducerClosed (di-log registry), bukan panic.
	bus.Close()
}

func gateway(name string, db *pgxpool.Pool) payment.Gateway {
	switch name {
	case "offline":
		return payment.Offline{}
	default:
		return &payment.LedgerRepo{DB: db}
	}
}

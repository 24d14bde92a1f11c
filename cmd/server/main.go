// Command server runs the lot inventory and tax recording service.
//
// main only wires dependencies and owns the process lifecycle; business logic
// lives in the internal services. Without POSTGRES_DSN the process runs fully
// in memory, which is the local development mode.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/Soozey/MADAVOLA/internal/audit"
	"github.com/Soozey/MADAVOLA/internal/geo"
	"github.com/Soozey/MADAVOLA/internal/jwttoken"
	lotshandler "github.com/Soozey/MADAVOLA/internal/lots/handler"
	lotmetrics "github.com/Soozey/MADAVOLA/internal/lots/metrics"
	lotservice "github.com/Soozey/MADAVOLA/internal/lots/service"
	lotstore "github.com/Soozey/MADAVOLA/internal/lots/store"
	"github.com/Soozey/MADAVOLA/internal/payments"
	"github.com/Soozey/MADAVOLA/internal/platform/config"
	"github.com/Soozey/MADAVOLA/internal/platform/httpserver"
	"github.com/Soozey/MADAVOLA/internal/platform/logger"
	"github.com/Soozey/MADAVOLA/internal/platform/metrics"
	platformredis "github.com/Soozey/MADAVOLA/internal/platform/redis"
	"github.com/Soozey/MADAVOLA/internal/receipts"
	taxeshandler "github.com/Soozey/MADAVOLA/internal/taxes/handler"
	taxmetrics "github.com/Soozey/MADAVOLA/internal/taxes/metrics"
	taxservice "github.com/Soozey/MADAVOLA/internal/taxes/service"
	taxstore "github.com/Soozey/MADAVOLA/internal/taxes/store"
	httptransport "github.com/Soozey/MADAVOLA/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		db          *sql.DB
		lotTx       lotstore.Tx
		taxTx       taxstore.Tx
		payVerifier payments.Verifier
		geoResolver lotservice.GeoResolver
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		lotTx = lotstore.NewSQLTx(db)
		taxTx = taxstore.NewSQLTx(db)
		payVerifier = payments.NewPostgres(db)
		geoResolver = geo.NewPostgresResolver(db)
	} else {
		log.Warn("POSTGRES_DSN not set, running with in-memory storage")
		lotTx = lotstore.NewMemory()
		taxTx = taxstore.NewMemory()
		payVerifier = payments.NewMemoryStore()
		geoResolver = geo.NewMemoryResolver()
	}

	// Receipt verification cache; optional.
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	receiptCache := receipts.NewCache(redisClient, cfg.ReceiptTTL)

	// Audit trail: Kafka when brokers are configured, audit_events table when
	// only Postgres is, in-memory otherwise.
	recorder := audit.NewRecorder(log)
	var sink audit.Sink
	switch {
	case len(cfg.KafkaBrokers) > 0:
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to connect audit sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	case db != nil:
		sink = audit.NewPostgresSink(db)
	default:
		log.Warn("KAFKA_BROKERS not set, audit trail kept in memory")
		sink = audit.NewMemorySink()
	}
	worker := audit.NewWorker(sink, recorder.Inbox(), log)

	// Services.
	lotSvc := lotservice.New(lotTx, payVerifier, geoResolver, log,
		lotservice.WithAuditRecorder(recorder),
		lotservice.WithMetrics(lotmetrics.New()),
		lotservice.WithReceiptCache(receiptCache),
	)
	taxSvc := taxservice.New(taxTx, log,
		taxservice.WithAuditRecorder(recorder),
		taxservice.WithMetrics(taxmetrics.New()),
	)

	// HTTP surface.
	router := httptransport.NewRouter(httptransport.Deps{
		Lots:      lotshandler.New(lotSvc, log),
		Taxes:     taxeshandler.New(taxSvc, log),
		Receipts:  receipts.NewHandler(receiptCache, log),
		Logger:    log,
		Metrics:   metrics.New(),
		Validator: jwttoken.NewValidator(cfg.JWTSigningKey),
		Health:    healthHandler(db, redisClient),
	})
	srv := httpserver.New(cfg.Addr, router, httpserver.Timeouts{
		Read:  cfg.HTTPReadTimeout,
		Write: cfg.HTTPWriteTimeout,
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting madavola server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

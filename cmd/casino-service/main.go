package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/auth"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/boardcache"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/catalog"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/deposit"
	chttp "github.com/radieske/gift-casino-platform-poc/internal/casino-service/http"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/inventory"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/ledger"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/outcome"
	kpub "github.com/radieske/gift-casino-platform-poc/internal/casino-service/producer"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/ton"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/withdrawal"
	sharedcache "github.com/radieske/gift-casino-platform-poc/internal/shared/cache"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/config"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/db"
	skafka "github.com/radieske/gift-casino-platform-poc/internal/shared/kafka"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()
	if err := db.EnsureSchema(context.Background(), pg); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (eventos de liquidação e depósito)
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	defer settledWriter.Close()
	completedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDepositCompleted)
	defer completedWriter.Close()

	// deps
	accounts := ledger.NewPostgres(pg, cfg.StartBalanceCents)
	cat := catalog.NewPostgres(pg)
	boards := boardcache.New(rdb, cfg.BoardTTL)
	inv := inventory.NewPostgres(pg)
	queue := withdrawal.NewPostgres(pg)
	publ := kpub.NewKafkaPublisher(settledWriter, completedWriter)

	reconciler := &deposit.Reconciler{
		Store:          deposit.NewPostgres(pg),
		Chain:          ton.NewClient(cfg.TonAPIURL, cfg.TonAPIKey),
		Log:            log,
		WalletAddress:  cfg.DepositWalletAddress,
		NanotonPerCent: cfg.NanotonPerCent,
		Expiry:         cfg.DepositExpiry,
		Retries:        cfg.TonVerifyRetries,
		Delay:          cfg.TonVerifyDelay,
		Timeout:        cfg.TonVerifyTimeout,
	}

	// métricas
	wagersSettled := promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_wagers_settled_total",
		Help: "Apostas liquidadas com sucesso",
	})
	depositsCompleted := promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_deposits_completed_total",
		Help: "Depósitos verificados e creditados",
	})
	withdrawalsEnqueued := promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_withdrawals_enqueued_total",
		Help: "Tarefas de saque enfileiradas",
	})

	api := chttp.NewServer(
		log,
		chttp.Config{
			Weights:             outcome.Weights{Lose: cfg.WeightLose, Breakeven: cfg.WeightBreakeven, Win: cfg.WeightWin},
			EpsilonCents:        cfg.EpsilonCents,
			BonusBps:            cfg.BonusBps,
			FreeWagerBonusCents: cfg.FreeWagerBonusCents,
			FreeWagerCooldown:   cfg.FreeWagerCooldown,
			ServiceAPIKey:       cfg.ServiceAPIKey,
		},
		auth.NewVerifier(cfg.AuthSecret),
		accounts, cat, boards, inv, reconciler, queue, publ,
	)
	api.OnWagerSettled = wagersSettled.Inc
	api.OnDepositCompleted = depositsCompleted.Inc
	api.OnWithdrawEnqueued = withdrawalsEnqueued.Inc

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("casino-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}

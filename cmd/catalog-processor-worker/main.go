package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/catalog-processor/consumer"
	"github.com/radieske/gift-casino-platform-poc/internal/catalog-processor/repository"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/config"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/db"
	skafka "github.com/radieske/gift-casino-platform-poc/internal/shared/kafka"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if err := db.EnsureSchema(context.Background(), pg); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	repo := repository.NewPostgresRepo(pg)

	// Consumer group catalog-processor: múltiplas réplicas dividem partições
	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicPriceUpdates, "catalog-processor")
	defer reader.Close()

	// DLQ para mensagens rejeitadas (decode ou validação)
	var dlqWriter *kafkago.Writer
	if cfg.TopicPriceUpdatesDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPriceUpdatesDLQ)
		defer dlqWriter.Close()
	}

	// Métricas de processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_proc_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_proc_db_writes_total", Help: "upserts no catálogo"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if dlqWriter != nil {
		proc.DLQ = dlqWriter
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("catalog-processor-worker consuming", zap.String("topic", cfg.TopicPriceUpdates))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor", zap.Error(err))
	}
	log.Info("shutdown")
}

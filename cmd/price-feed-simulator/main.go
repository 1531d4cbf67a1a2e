package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/shared/config"
	skafka "github.com/radieske/gift-casino-platform-poc/internal/shared/kafka"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/logger"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/metrics"
	"github.com/radieske/gift-casino-platform-poc/pkg/contracts/events"
)

// Catálogo fixo de presentes simulados; o preço base deriva num passeio
// aleatório limitado a ±10% por tick.
var giftCatalog = []events.PriceUpdate{
	{Name: "Homemade Cake", ValueCents: 400, ImageURL: "https://cdn.example.dev/gifts/cake.png"},
	{Name: "Desk Calendar", ValueCents: 700, ImageURL: "https://cdn.example.dev/gifts/calendar.png"},
	{Name: "Santa Hat", ValueCents: 1300, ImageURL: "https://cdn.example.dev/gifts/santa-hat.png"},
	{Name: "Durov's Cap", ValueCents: 4200, ImageURL: "https://cdn.example.dev/gifts/durov-cap.png"},
	{Name: "Mini Oscar", ValueCents: 6000, ImageURL: "https://cdn.example.dev/gifts/oscar.png"},
	{Name: "Precious Peach", ValueCents: 14000, ImageURL: "https://cdn.example.dev/gifts/peach.png"},
	{Name: "Astral Shard", ValueCents: 30000, ImageURL: "https://cdn.example.dev/gifts/shard.png"},
	{Name: "Plush Pepe", ValueCents: 90000, ImageURL: "https://cdn.example.dev/gifts/pepe.png"},
}

var published = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "price_feed_messages_published_total",
	Help: "Atualizações de preço publicadas",
})

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(published)

	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPriceUpdates)
	defer writer.Close()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	current := make([]int64, len(giftCatalog))
	for i, g := range giftCatalog {
		current[i] = g.ValueCents
	}
	version := 0

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Info("price-feed-simulator publishing", zap.String("topic", cfg.TopicPriceUpdates))
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown")
			return
		case <-ticker.C:
			version++
			for i, g := range giftCatalog {
				// deriva ±10% do preço corrente, sem deixar cair abaixo de
				// metade do preço base
				drift := 1 + (rng.Float64()-0.5)*0.2
				next := int64(float64(current[i]) * drift)
				if next < g.ValueCents/2 {
					next = g.ValueCents / 2
				}
				current[i] = next

				ev := events.PriceUpdate{
					Name:       g.Name,
					ValueCents: next,
					ImageURL:   g.ImageURL,
					UpdatedAt:  time.Now().UTC(),
					Source:     "price-feed-simulator",
					Version:    version,
				}
				b, _ := json.Marshal(ev)
				if err := skafka.WriteJSON(ctx, writer, ev.Name, b); err != nil {
					log.Warn("publish failed", zap.String("gift", ev.Name), zap.Error(err))
					continue
				}
				published.Inc()
			}
			log.Debug("tick published", zap.Int("gifts", len(giftCatalog)), zap.Int("version", version))
		}
	}
}

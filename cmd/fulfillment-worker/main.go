package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/dto"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/withdrawal"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/config"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/logger"
	"github.com/radieske/gift-casino-platform-poc/internal/shared/metrics"
)

// Worker de fulfillment: drena a fila durável de saques do casino-service,
// simula a transferência do presente e confirma via callback. O item de
// inventário só é consumido no callback, então um worker que morre no meio
// não perde o prêmio do jogador.
var (
	tasksClaimed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_tasks_claimed_total",
		Help: "Tarefas de saque drenadas",
	})
	tasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_tasks_completed_total",
		Help: "Tarefas de saque concluídas",
	})
	taskErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_task_errors_total",
		Help: "Falhas de drain ou complete",
	})
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(tasksClaimed, tasksCompleted, taskErrors)

	client := &http.Client{Timeout: 10 * time.Second}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	log.Info("fulfillment-worker polling", zap.String("casino", cfg.CasinoServiceURL))
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown")
			return
		case <-ticker.C:
			tasks, err := drain(ctx, client, cfg)
			if err != nil {
				log.Warn("drain", zap.Error(err))
				taskErrors.Inc()
				continue
			}
			for _, t := range tasks {
				tasksClaimed.Inc()
				if err := processOne(ctx, log, client, cfg, t); err != nil {
					log.Error("process task", zap.String("taskId", t.ID), zap.Error(err))
					taskErrors.Inc()
					continue
				}
				tasksCompleted.Inc()
			}
		}
	}
}

func drain(ctx context.Context, client *http.Client, cfg config.Config) ([]withdrawal.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.CasinoServiceURL+"/internal/withdrawals/drain", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Service-Key", cfg.ServiceAPIKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drain status %d", resp.StatusCode)
	}

	var out dto.DrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// processOne simula a entrega do presente e confirma a tarefa.
// O complete é retentado porque a entrega já aconteceu; desistir aqui
// deixaria a tarefa presa em in_flight.
func processOne(ctx context.Context, log *zap.Logger, client *http.Client, cfg config.Config, t withdrawal.Task) error {
	log.Info("transferring gift",
		zap.String("taskId", t.ID),
		zap.Int64("accountId", t.AccountID),
		zap.String("prize", t.PrizeName),
	)
	// placeholder do transfer real (API de presentes do Telegram)
	time.Sleep(200 * time.Millisecond)

	var err error
	const retries = 3
	for i := 0; i < retries; i++ {
		if err = complete(ctx, client, cfg, t.ID); err == nil {
			return nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return err
}

func complete(ctx context.Context, client *http.Client, cfg config.Config, taskID string) error {
	body, _ := json.Marshal(dto.CompleteWithdrawalRequest{TaskID: taskID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.CasinoServiceURL+"/internal/withdrawals/complete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", cfg.ServiceAPIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("complete status %d", resp.StatusCode)
	}
	return nil
}

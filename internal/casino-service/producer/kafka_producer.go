package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/gift-casino-platform-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de liquidação do casino-service.
type KafkaPublisher struct {
	SettledWriter   *kafka.Writer
	CompletedWriter *kafka.Writer
}

func NewKafkaPublisher(settled, completed *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{SettledWriter: settled, CompletedWriter: completed}
}

func (p *KafkaPublisher) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.AccountID, 10)),
		Value: b,
	})
}

func (p *KafkaPublisher) PublishDepositCompleted(ctx context.Context, e events.DepositCompleted) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.CompletedWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Token),
		Value: b,
	})
}

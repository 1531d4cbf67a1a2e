package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/pkg/contracts/events"
)

// PriceStore é a persistência do catálogo usada pelo processor.
type PriceStore interface {
	UpsertPrice(ctx context.Context, e events.PriceUpdate) error
}

// MessageWriter é o publicador da DLQ (um *kafka.Writer em produção).
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Processor consome atualizações de preço do Kafka e persiste o catálogo.
// Mensagens ilegíveis ou inválidas vão para a DLQ quando configurada.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   PriceStore
	DLQ    MessageWriter // opcional

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.handle(ctx, m)
	}
}

// handle processa uma mensagem: decode, validação, upsert.
// Rejeições de decode e validação são terminais e vão pra DLQ. Falha de banco
// não vai: a mensagem é válida e o reprocessamento pode salvá-la.
func (p *Processor) handle(ctx context.Context, m kafka.Message) {
	if p.OnConsumed != nil {
		p.OnConsumed()
	}

	var ev events.PriceUpdate
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		if p.OnError != nil {
			p.OnError("decode")
		}
		p.deadLetter(ctx, m)
		return
	}
	if ev.Name == "" || ev.ValueCents <= 0 {
		p.Log.Warn("price update rejected",
			zap.String("name", ev.Name), zap.Int64("value_cents", ev.ValueCents))
		if p.OnError != nil {
			p.OnError("validate")
		}
		p.deadLetter(ctx, m)
		return
	}

	// Persiste/atualiza o preço corrente no Postgres
	if err := p.Repo.UpsertPrice(ctx, ev); err != nil {
		p.Log.Warn("db upsert failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("db_upsert")
		}
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
}

// deadLetter reenvia a mensagem rejeitada como chegou, chave e valor intactos.
func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value}); err != nil {
		p.Log.Warn("dlq publish failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}

package boardcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/board"
)

// Cache guarda tabuleiros gerados no Redis, chaveados por (tier, seed).
// O cache é compartilhado entre réplicas do casino-service: o tabuleiro
// mostrado ao jogador e o usado na liquidação vêm da mesma cópia, mesmo
// quando as duas chamadas caem em instâncias diferentes.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(c *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: c, TTL: ttl}
}

// Key gera a chave Redis de um tabuleiro.
func Key(tier, seed string) string { return "board:" + tier + ":" + seed }

// Get busca um tabuleiro cacheado; (zero, false, nil) quando não existe.
func (c *Cache) Get(ctx context.Context, tier, seed string) (board.Board, bool, error) {
	raw, err := c.Client.Get(ctx, Key(tier, seed)).Bytes()
	if err == redis.Nil {
		return board.Board{}, false, nil
	}
	if err != nil {
		return board.Board{}, false, err
	}
	var b board.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return board.Board{}, false, err
	}
	return b, true, nil
}

// Set grava o tabuleiro com o TTL configurado.
func (c *Cache) Set(ctx context.Context, b board.Board) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, Key(b.Tier, b.Seed), raw, c.TTL).Err()
}

package outcome

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// NewRand cria um PRNG semeado por crypto/rand para os sorteios de liquidação.
// Diferente do tabuleiro, o sorteio do slot NÃO é derivado do seed do cliente:
// o jogador não pode prever a categoria.
func NewRand() *rand.Rand {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(b[:]))))
}

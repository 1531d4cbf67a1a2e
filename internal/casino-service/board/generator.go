package board

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/catalog"
)

// Generate produz o tabuleiro de um tier a partir do seed do cliente e de um
// snapshot do catálogo. É uma função pura: o mesmo seed com o mesmo snapshot
// produz sempre a mesma sequência de slots.
func Generate(seed string, tier Tier, entries []catalog.Entry) (Board, error) {
	if len(entries) == 0 {
		return Board{}, catalog.ErrEmpty
	}

	rng := rand.New(rand.NewSource(seedSource(seed, tier.Name)))

	half := make([]Slot, len(tier.Half))
	for i, spec := range tier.Half {
		half[i] = resolve(spec, entries, rng)
	}
	center := resolve(tier.Center, entries, rng)

	// espelha a metade em volta do centro: o tabuleiro é um palíndromo
	slots := make([]Slot, 0, tier.SlotCount())
	slots = append(slots, half...)
	slots = append(slots, center)
	for i := len(half) - 1; i >= 0; i-- {
		slots = append(slots, half[i])
	}

	return Board{Seed: seed, Tier: tier.Name, Slots: slots}, nil
}

// seedSource deriva a semente do PRNG do par (seed do cliente, tier).
func seedSource(seed, tier string) int64 {
	h := sha256.Sum256([]byte(seed + ":" + tier))
	return int64(binary.BigEndian.Uint64(h[:8]))
}

// resolve materializa um SlotSpec. Slots fixos saem da configuração; slots de
// faixa sorteiam um presente do catálogo cujo valor caiba em [Min,Max]. Se a
// faixa estiver vazia, cai no presente mais próximo do ponto médio da faixa.
func resolve(spec SlotSpec, entries []catalog.Entry, rng *rand.Rand) Slot {
	if !spec.IsRange() {
		return Slot{Prize: spec.Prize, ValueCents: spec.ValueCents}
	}

	var inRange []catalog.Entry
	for _, e := range entries {
		if e.ValueCents >= spec.MinCents && e.ValueCents <= spec.MaxCents {
			inRange = append(inRange, e)
		}
	}

	var chosen catalog.Entry
	if len(inRange) > 0 {
		chosen = inRange[rng.Intn(len(inRange))]
	} else {
		chosen = nearestToMidpoint(entries, (spec.MinCents+spec.MaxCents)/2)
	}

	return Slot{
		Prize:        chosen.Name,
		ValueCents:   chosen.ValueCents,
		ImageURL:     chosen.ImageURL,
		Withdrawable: true,
	}
}

func nearestToMidpoint(entries []catalog.Entry, midpoint int64) catalog.Entry {
	best := entries[0]
	bestDist := absDiff(best.ValueCents, midpoint)
	for _, e := range entries[1:] {
		if d := absDiff(e.ValueCents, midpoint); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

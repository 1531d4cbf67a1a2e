package outcome

import (
	"math/rand"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/board"
)

// Category particiona os slots do tabuleiro em relação à aposta.
type Category int

const (
	Lose Category = iota
	Breakeven
	Win
)

func (c Category) String() string {
	switch c {
	case Lose:
		return "lose"
	case Breakeven:
		return "breakeven"
	case Win:
		return "win"
	}
	return "unknown"
}

// Resolution indica como o slot vencedor foi escolhido.
// ResolvedWeighted é o caminho normal; os fallbacks cobrem categorias vazias.
type Resolution int

const (
	ResolvedWeighted Resolution = iota
	FallbackExtreme             // win sem candidatos -> maior valor; lose -> menor valor
	FallbackNearest             // breakeven sem candidatos -> valor mais próximo da aposta
)

// Weights são os pesos das categorias. Não precisam somar 1: o sorteio
// renormaliza. Pesos não-positivos são tratados como distribuição uniforme.
type Weights struct {
	Lose      float64
	Breakeven float64
	Win       float64
}

// Outcome é o resultado da seleção: o slot premiado e como ele foi resolvido.
type Outcome struct {
	Slot       board.Slot
	Index      int
	Category   Category
	Resolution Resolution
}

// Select sorteia o slot premiado de um tabuleiro já gerado (e cacheado — nunca
// regenerado aqui, ou o tabuleiro mostrado e o liquidado podem divergir).
// Primeiro sorteia a categoria na distribuição ponderada, depois um slot
// uniforme dentro dela; categoria vazia cai na cadeia de prioridade de fallback.
func Select(b board.Board, stakeCents int64, w Weights, epsilonCents int64, rng *rand.Rand) Outcome {
	var lose, breakeven, win []int
	for i, s := range b.Slots {
		switch {
		case absDiff(s.ValueCents, stakeCents) <= epsilonCents:
			breakeven = append(breakeven, i)
		case s.ValueCents < stakeCents:
			lose = append(lose, i)
		default:
			win = append(win, i)
		}
	}

	cat := drawCategory(w, rng)

	switch cat {
	case Win:
		if len(win) > 0 {
			idx := win[rng.Intn(len(win))]
			return Outcome{Slot: b.Slots[idx], Index: idx, Category: Win, Resolution: ResolvedWeighted}
		}
		idx := extremeIndex(b.Slots, true)
		return Outcome{Slot: b.Slots[idx], Index: idx, Category: Win, Resolution: FallbackExtreme}

	case Breakeven:
		if len(breakeven) > 0 {
			idx := breakeven[rng.Intn(len(breakeven))]
			return Outcome{Slot: b.Slots[idx], Index: idx, Category: Breakeven, Resolution: ResolvedWeighted}
		}
		idx := nearestIndex(b.Slots, stakeCents)
		return Outcome{Slot: b.Slots[idx], Index: idx, Category: Breakeven, Resolution: FallbackNearest}

	default: // Lose
		if len(lose) > 0 {
			idx := lose[rng.Intn(len(lose))]
			return Outcome{Slot: b.Slots[idx], Index: idx, Category: Lose, Resolution: ResolvedWeighted}
		}
		idx := extremeIndex(b.Slots, false)
		return Outcome{Slot: b.Slots[idx], Index: idx, Category: Lose, Resolution: FallbackExtreme}
	}
}

// drawCategory sorteia a categoria na distribuição ponderada renormalizada.
func drawCategory(w Weights, rng *rand.Rand) Category {
	wl, wb, ww := w.Lose, w.Breakeven, w.Win
	if wl < 0 {
		wl = 0
	}
	if wb < 0 {
		wb = 0
	}
	if ww < 0 {
		ww = 0
	}
	total := wl + wb + ww
	if total <= 0 {
		wl, wb, ww = 1, 1, 1
		total = 3
	}

	r := rng.Float64() * total
	switch {
	case r < wl:
		return Lose
	case r < wl+wb:
		return Breakeven
	default:
		return Win
	}
}

// extremeIndex retorna o índice de maior (max=true) ou menor valor do tabuleiro.
func extremeIndex(slots []board.Slot, max bool) int {
	best := 0
	for i, s := range slots {
		if max && s.ValueCents > slots[best].ValueCents {
			best = i
		}
		if !max && s.ValueCents < slots[best].ValueCents {
			best = i
		}
	}
	return best
}

// nearestIndex retorna o índice do slot com valor mais próximo da aposta.
func nearestIndex(slots []board.Slot, stakeCents int64) int {
	best := 0
	bestDist := absDiff(slots[0].ValueCents, stakeCents)
	for i, s := range slots[1:] {
		if d := absDiff(s.ValueCents, stakeCents); d < bestDist {
			best, bestDist = i+1, d
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

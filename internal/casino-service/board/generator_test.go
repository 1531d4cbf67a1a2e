package board

import (
	"testing"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/catalog"
)

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		{Name: "Jelly Bunny", ValueCents: 400},
		{Name: "Spy Agaric", ValueCents: 700},
		{Name: "Homemade Cake", ValueCents: 1800},
		{Name: "Eternal Rose", ValueCents: 4200},
		{Name: "Precious Peach", ValueCents: 26000},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	tier := Tiers["low"]
	entries := testEntries()

	a, err := Generate("abc123", tier, entries)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate("abc123", tier, entries)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(a.Slots) != len(b.Slots) {
		t.Fatalf("slot count diverged: %d vs %d", len(a.Slots), len(b.Slots))
	}
	for i := range a.Slots {
		if a.Slots[i] != b.Slots[i] {
			t.Fatalf("slot %d diverged: %+v vs %+v", i, a.Slots[i], b.Slots[i])
		}
	}
}

func TestGenerateDifferentSeedsCanDiverge(t *testing.T) {
	tier := Tiers["low"]
	entries := testEntries()

	a, _ := Generate("seed-a", tier, entries)
	b, _ := Generate("seed-b", tier, entries)

	// seeds diferentes usam fontes PRNG diferentes; os tabuleiros ainda têm o
	// mesmo formato
	if len(a.Slots) != len(b.Slots) {
		t.Fatalf("boards of the same tier must have the same size")
	}
}

func TestGeneratePalindrome(t *testing.T) {
	entries := testEntries()
	for name, tier := range Tiers {
		b, err := Generate("sym-check", tier, entries)
		if err != nil {
			t.Fatalf("tier %s: %v", name, err)
		}
		if len(b.Slots) != tier.SlotCount() {
			t.Fatalf("tier %s: expected %d slots, got %d", name, tier.SlotCount(), len(b.Slots))
		}
		n := len(b.Slots)
		for i := 0; i < n/2; i++ {
			if b.Slots[i] != b.Slots[n-1-i] {
				t.Fatalf("tier %s: slot %d != slot %d: %+v vs %+v",
					name, i, n-1-i, b.Slots[i], b.Slots[n-1-i])
			}
		}
	}
}

func TestGenerateFixedSlotsVerbatim(t *testing.T) {
	tier := Tiers["low"]
	b, err := Generate("fixed", tier, testEntries())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	center := b.Slots[len(b.Slots)/2]
	if center.Prize != "10 Coins" || center.ValueCents != 10 {
		t.Fatalf("center slot must come verbatim from config, got %+v", center)
	}
	if center.Withdrawable {
		t.Fatalf("fixed-value slots are not withdrawable")
	}
}

func TestGenerateRangeSlotWithinRange(t *testing.T) {
	tier := Tiers["low"]
	b, err := Generate("range", tier, testEntries())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// slot 1 tem faixa [300,900]; o catálogo de teste tem entradas dentro dela
	s := b.Slots[1]
	if s.ValueCents < 300 || s.ValueCents > 900 {
		t.Fatalf("range slot resolved outside [300,900]: %+v", s)
	}
	if !s.Withdrawable {
		t.Fatalf("catalog-resolved slots must be withdrawable")
	}
}

func TestGenerateRangeFallbackNearestMidpoint(t *testing.T) {
	// nenhum item cai em [1000,5000]; o mais próximo do ponto médio (3000) vence
	entries := []catalog.Entry{
		{Name: "Cheap Gift", ValueCents: 100},
		{Name: "Almost There", ValueCents: 5500},
		{Name: "Way Off", ValueCents: 90000},
	}
	tier := Tier{
		Name:       "fallback",
		StakeCents: 200,
		Half:       []SlotSpec{{MinCents: 1000, MaxCents: 5000}},
		Center:     SlotSpec{Prize: "1 Coin", ValueCents: 1},
	}

	b, err := Generate("fb", tier, entries)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if b.Slots[0].Prize != "Almost There" {
		t.Fatalf("expected nearest-to-midpoint fallback, got %+v", b.Slots[0])
	}
}

func TestGenerateEmptyCatalogFails(t *testing.T) {
	_, err := Generate("empty", Tiers["low"], nil)
	if err != catalog.ErrEmpty {
		t.Fatalf("expected catalog.ErrEmpty, got %v", err)
	}
}

package board

// SlotSpec descreve uma posição configurada do tabuleiro antes da resolução.
// Ou é um prêmio de valor fixo (Prize + ValueCents), ou uma faixa [MinCents,MaxCents]
// resolvida contra o catálogo de preços na geração.
type SlotSpec struct {
	Prize      string
	ValueCents int64
	MinCents   int64
	MaxCents   int64
}

// IsRange indica se o slot é resolvido pelo catálogo.
func (s SlotSpec) IsRange() bool { return s.MaxCents > 0 }

// Slot é uma posição resolvida do tabuleiro mostrada ao jogador.
// Slots de faixa viram presentes do catálogo e são sacáveis; slots fixos
// são prêmios em moeda interna e só podem ser convertidos.
type Slot struct {
	Prize        string `json:"prize"`
	ValueCents   int64  `json:"value_cents"`
	ImageURL     string `json:"image_url,omitempty"`
	Withdrawable bool   `json:"withdrawable"`
}

// Board é a sequência simétrica de slots de um tier, congelada por seed.
type Board struct {
	Seed  string `json:"seed"`
	Tier  string `json:"tier"`
	Slots []Slot `json:"slots"`
}

// Tier fixa o valor da aposta e o layout do tabuleiro.
// Half é a metade externa (da borda até o centro); o gerador espelha Half em
// volta de Center, então todo tabuleiro é um palíndromo por construção.
type Tier struct {
	Name       string
	StakeCents int64
	Half       []SlotSpec
	Center     SlotSpec
}

// SlotCount retorna o tamanho do tabuleiro gerado para o tier.
func (t Tier) SlotCount() int { return 2*len(t.Half) + 1 }

// Tiers é o catálogo fixo de níveis de aposta.
// Bordas pagam mais, centro paga menos (mesma curva do layout original).
var Tiers = map[string]Tier{
	"low": {
		Name:       "low",
		StakeCents: 200,
		Half: []SlotSpec{
			{MinCents: 1000, MaxCents: 5000},
			{MinCents: 300, MaxCents: 900},
			{Prize: "210 Coins", ValueCents: 210},
			{Prize: "120 Coins", ValueCents: 120},
		},
		Center: SlotSpec{Prize: "10 Coins", ValueCents: 10},
	},
	"medium": {
		Name:       "medium",
		StakeCents: 1000,
		Half: []SlotSpec{
			{MinCents: 5000, MaxCents: 20000},
			{MinCents: 1500, MaxCents: 4500},
			{Prize: "1000 Coins", ValueCents: 1000},
			{Prize: "500 Coins", ValueCents: 500},
		},
		Center: SlotSpec{Prize: "50 Coins", ValueCents: 50},
	},
	"high": {
		Name:       "high",
		StakeCents: 5000,
		Half: []SlotSpec{
			{MinCents: 25000, MaxCents: 100000},
			{MinCents: 10000, MaxCents: 24000},
			{MinCents: 5500, MaxCents: 9000},
			{Prize: "5000 Coins", ValueCents: 5000},
			{Prize: "2000 Coins", ValueCents: 2000},
		},
		Center: SlotSpec{Prize: "100 Coins", ValueCents: 100},
	},
}

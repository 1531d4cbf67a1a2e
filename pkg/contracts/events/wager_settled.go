package events

type WagerSettled struct {
	AccountID  int64  `json:"account_id"`
	Tier       string `json:"tier"`
	StakeCents int64  `json:"stake_cents"`
	AwardCents int64  `json:"award_cents"`
	SlotIndex  int    `json:"slot_index"`
	PrizeName  string `json:"prize_name"`
	ItemID     string `json:"item_id"` // item de inventário criado pela liquidação
	TsUnixMs   int64  `json:"ts_unix_ms"`
}

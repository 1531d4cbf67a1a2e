package dto

import (
	"time"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/board"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/inventory"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/withdrawal"
)

type AccountResponse struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username,omitempty"`
	FirstName       string     `json:"first_name,omitempty"`
	BalanceCents    int64      `json:"balance_cents"`
	LastFreeWagerAt *time.Time `json:"last_free_wager_at,omitempty"`
}

type BoardResponse struct {
	Tier       string       `json:"tier"`
	Seed       string       `json:"seed"`
	StakeCents int64        `json:"stake_cents"`
	Slots      []board.Slot `json:"slots"`
}

type WagerResponse struct {
	PrizeName       string `json:"prize_name"`
	AwardCents      int64  `json:"award_cents"`
	SlotIndex       int    `json:"slot_index"`
	ItemID          string `json:"item_id"`
	NewBalanceCents int64  `json:"new_balance_cents"`
}

type FreeWagerResponse struct {
	BonusCents      int64 `json:"bonus_cents"`
	NewBalanceCents int64 `json:"new_balance_cents"`
}

type BeginDepositResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"` // destino da transferência out-of-band
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyDepositResponse struct {
	Status          string `json:"status"` // not_found | pending | expired | success
	CreditedCents   int64  `json:"credited_cents,omitempty"`
	NewBalanceCents int64  `json:"new_balance_cents,omitempty"`
}

type InventoryResponse struct {
	Items []inventory.Item `json:"items"`
}

type ConvertResponse struct {
	PayoutCents     int64 `json:"payout_cents"`
	NewBalanceCents int64 `json:"new_balance_cents"`
}

type WithdrawResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type DrainResponse struct {
	Tasks []withdrawal.Task `json:"tasks"`
}

type PrizeCreditResponse struct {
	CreditedCents   int64 `json:"credited_cents"`
	NewBalanceCents int64 `json:"new_balance_cents"`
}

package dto

type WagerRequest struct {
	Tier string `json:"tier"` // "low" | "medium" | "high"
	Seed string `json:"seed"` // seed do cliente que prende o tabuleiro exibido
}

type VerifyDepositRequest struct {
	Token string `json:"token"`
}

type ConvertRequest struct {
	ItemID string `json:"item_id"`
}

type WithdrawRequest struct {
	ItemID string `json:"item_id"`
}

type CompleteWithdrawalRequest struct {
	TaskID string `json:"task_id"`
}

// PrizeCreditRequest credita o valor de catálogo de um presente reconhecido
// (rota service-to-service).
type PrizeCreditRequest struct {
	AccountID int64  `json:"account_id"`
	PrizeName string `json:"prize_name"`
}

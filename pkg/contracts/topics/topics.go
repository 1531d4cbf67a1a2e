package topics

const (
	// Preços de presentes (price feed -> catalog-processor)
	GiftPriceUpdates = "gift_price_updates"

	// Liquidação (casino-service -> consumidores downstream)
	WagerSettled     = "wager_settled"
	DepositCompleted = "deposit_completed"

	// DLQ
	GiftPriceUpdatesDLQ = "gift_price_updates_dlq"
)

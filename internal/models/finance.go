package models

import "time"

// Ledger entry types
const (
	LedgerCredit = "credit"
	LedgerDebit  = "debit"
)

// LedgerEntry is one line of a user's simulated money history
type LedgerEntry struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Investment is a user's accumulated gold holding
type Investment struct {
	ID            string    `json:"id"`
	UserEmail     string    `json:"user_email"`
	TotalInvested float64   `json:"total_invested"`
	GoldGrams     float64   `json:"gold_grams"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvestRequest triggers one unit investment for a worker
type InvestRequest struct {
	UserEmail string `json:"user_email"`
}

// InvestResponse reports the investment just made plus running totals
type InvestResponse struct {
	Invested         float64 `json:"invested"`
	GoldGrams        float64 `json:"gold_grams"`
	RemainingBalance float64 `json:"remaining_balance"`
	TotalInvested    float64 `json:"total_invested"`
	TotalGoldGrams   float64 `json:"total_gold_grams"`
}

// InvestmentStatus is the holding valued at the current simulated price
type InvestmentStatus struct {
	TotalInvested float64 `json:"total_invested"`
	GoldGrams     float64 `json:"gold_grams"`
	CurrentValue  float64 `json:"current_value"`
	Appreciation  float64 `json:"appreciation"`
}

// RecoverRequest liquidates the holding back to the worker's balance
type RecoverRequest struct {
	UserEmail string `json:"user_email"`
}

// RecoverResponse reports the liquidation
type RecoverResponse struct {
	RecoveredAmount float64 `json:"recovered_amount"`
	NewBalance      float64 `json:"new_balance"`
}

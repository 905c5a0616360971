// Package invest implements the simulated gold micro-investment flow:
// fixed-unit purchases priced at a constant gram rate, a flat 1.5%
// appreciation on valuation, and an emergency recovery that liquidates
// the whole holding back into the worker's balance.
package invest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

const (
	// GoldPricePerGram is the simulated gold price in rupees
	GoldPricePerGram = 6500

	// UnitAmount is the fixed rupee amount of one investment
	UnitAmount = 100

	// AppreciationRate is the flat simulated appreciation multiplier
	AppreciationRate = 1.015
)

// ErrInsufficientBalance is returned when the worker cannot cover one unit
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrNothingInvested is returned by Recover when the holding is empty
var ErrNothingInvested = errors.New("no investments to recover")

// GramsFor converts a rupee amount into gold grams at the fixed price,
// rounded to 6 decimal places
func GramsFor(amount float64) float64 {
	return round(amount/GoldPricePerGram, 6)
}

// CurrentValue values a holding at the appreciated price, rounded to paise
func CurrentValue(goldGrams float64) float64 {
	return round(goldGrams*GoldPricePerGram*AppreciationRate, 2)
}

// RecoveryValue is the liquidation amount for an invested total
func RecoveryValue(totalInvested float64) float64 {
	return round(totalInvested*AppreciationRate, 2)
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// Execute performs one unit investment for a worker: debit the balance,
// accrue grams in the holding, and record the debit in the ledger. Used
// by both the manual invest endpoint and the auto-invest sweeper.
func Execute(ctx context.Context, repo storage.Repository, email string) (*models.InvestResponse, error) {
	worker, err := repo.GetDailyWorker(ctx, email)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, fmt.Errorf("worker not found: %s", email)
	}
	if worker.Balance < UnitAmount {
		return nil, fmt.Errorf("%w: need %d, have %.2f", ErrInsufficientBalance, UnitAmount, worker.Balance)
	}

	grams := GramsFor(UnitAmount)

	if err := repo.ApplyWorkerInvestment(ctx, email, UnitAmount); err != nil {
		return nil, err
	}

	if err := repo.AccrueInvestment(ctx, email, UnitAmount, grams); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New().String(),
		UserEmail:   email,
		Type:        models.LedgerDebit,
		Amount:      UnitAmount,
		Description: fmt.Sprintf("Gold investment: %gg @ ₹%d/g", grams, GoldPricePerGram),
		Timestamp:   time.Now().UTC(),
	}
	if err := repo.InsertLedger(ctx, entry); err != nil {
		return nil, err
	}

	inv, err := repo.GetInvestment(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := &models.InvestResponse{
		Invested:         UnitAmount,
		GoldGrams:        grams,
		RemainingBalance: worker.Balance - UnitAmount,
		TotalInvested:    UnitAmount,
		TotalGoldGrams:   grams,
	}
	if inv != nil {
		resp.TotalInvested = inv.TotalInvested
		resp.TotalGoldGrams = inv.GoldGrams
	}

	return resp, nil
}

// Status values a user's holding. An empty holding reports zeros.
func Status(ctx context.Context, repo storage.Repository, email string) (*models.InvestmentStatus, error) {
	inv, err := repo.GetInvestment(ctx, email)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &models.InvestmentStatus{}, nil
	}

	value := CurrentValue(inv.GoldGrams)

	return &models.InvestmentStatus{
		TotalInvested: inv.TotalInvested,
		GoldGrams:     inv.GoldGrams,
		CurrentValue:  value,
		Appreciation:  round(value-inv.TotalInvested, 2),
	}, nil
}

// Recover liquidates the whole holding back to the worker's balance at
// the flat appreciation rate and records the credit in the ledger
func Recover(ctx context.Context, repo storage.Repository, email string) (*models.RecoverResponse, error) {
	inv, err := repo.GetInvestment(ctx, email)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.TotalInvested == 0 {
		return nil, ErrNothingInvested
	}

	recovered := RecoveryValue(inv.TotalInvested)

	if err := repo.ResetWorkerInvestment(ctx, email, recovered); err != nil {
		return nil, err
	}

	if err := repo.ResetInvestment(ctx, email); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New().String(),
		UserEmail:   email,
		Type:        models.LedgerCredit,
		Amount:      recovered,
		Description: "Emergency gold recovery (1.5% appreciation)",
		Timestamp:   time.Now().UTC(),
	}
	if err := repo.InsertLedger(ctx, entry); err != nil {
		return nil, err
	}

	worker, err := repo.GetDailyWorker(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := &models.RecoverResponse{RecoveredAmount: recovered}
	if worker != nil {
		resp.NewBalance = worker.Balance
	}

	return resp, nil
}

// Package rollover computes the unspent carry-forward amount of a budget
// period.
package rollover

import (
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Calculator computes rollover amounts against the transaction store.
type Calculator struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New returns a Calculator reading from db.
func New(db *gorm.DB, log zerolog.Logger) *Calculator {
	return &Calculator{db: db, log: log}
}

// Compute returns the unspent amount of the budget for the given month,
// clamped at zero. Overspending is absorbed, never carried forward as debt.
//
// Budgets without rollover enabled or without categories always roll over
// nothing. Store errors degrade to zero rollover: a missed carry-forward is
// preferred over blocking the renewal run.
func (c *Calculator) Compute(budget models.Budget, month types.Month) decimal.Decimal {
	if !budget.Rollover || len(budget.Categories) == 0 {
		return decimal.Zero
	}

	spent, err := budget.Spent(c.db, month)
	if err != nil {
		c.log.Error().
			Err(err).
			Str("budget", budget.ID.String()).
			Str("month", month.String()).
			Msg("rollover computation failed, assuming no rollover")
		return decimal.Zero
	}

	remainder := budget.Limit.Sub(spent)
	if remainder.IsNegative() {
		return decimal.Zero
	}

	return remainder
}

package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RolloverHistory is the audit trail of carried-over amounts, keyed by the
// month label of the period the amount was left over from.
type RolloverHistory map[string]decimal.Decimal

// Total returns the sum of all carried amounts in the history.
func (h RolloverHistory) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range h {
		total = total.Add(amount)
	}

	return total
}

// Budget tracks spend across a set of categories for exactly one period.
//
// The limit is fixed per period. Renewal never mutates an existing budget,
// it inserts a successor for the following month with ParentID pointing at
// its predecessor. Only CarriedOver and RolloverHistory differ between a
// budget and its successor.
type Budget struct {
	DefaultModel
	Name            string
	Limit           decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Month           types.Month     // The period this budget instance tracks
	AutoRenew       bool
	Rollover        bool
	ParentID        *uuid.UUID
	Parent          *Budget         `json:"-"`
	CarriedOver     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RolloverHistory RolloverHistory `gorm:"serializer:json"`
	Categories      []Category      `gorm:"many2many:budget_categories"`
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)

	if b.ParentID != nil && *b.ParentID == uuid.Nil {
		b.ParentID = nil
	}

	return nil
}

// CategoryIDs returns the ids of all categories the budget tracks.
func (b Budget) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Categories))
	for _, category := range b.Categories {
		ids = append(ids, category.ID)
	}

	return ids
}

// Spent returns the sum of all expense transactions in the budget's
// categories for the given month.
func (b Budget) Spent(db *gorm.DB, month types.Month) (decimal.Decimal, error) {
	ids := b.CategoryIDs()
	if len(ids) == 0 {
		return decimal.Zero, nil
	}

	from, until := month.Interval()

	var sum decimal.NullDecimal
	err := db.Table("transactions").
		Select("SUM(amount)").
		Where("transactions.deleted_at IS NULL").
		Where("type = ?", Expense).
		Where("category_id IN ?", ids).
		Where("date >= ? AND date < ?", from, until).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// HasSuccessor reports whether a renewed budget referencing this budget as
// its parent already exists. The renewal scheduler uses this to not renew
// the same budget twice.
func (b Budget) HasSuccessor(db *gorm.DB) (bool, error) {
	var count int64
	err := db.Model(&Budget{}).Where("parent_id = ?", b.ID).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// BudgetsForCategory returns all budgets whose category set contains the
// category with the given id.
func BudgetsForCategory(db *gorm.DB, id uuid.UUID) ([]Budget, error) {
	var budgets []Budget

	err := db.Preload("Categories").
		Joins("JOIN budget_categories ON budget_categories.budget_id = budgets.id").
		Where("budget_categories.category_id = ?", id).
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	return budgets, nil
}

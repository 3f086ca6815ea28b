package models

import (
	"strings"

	"gorm.io/gorm"
)

// Category groups transactions by purpose, e.g. "Groceries".
//
// Budgets track spend across a set of categories. Deleting a category only
// severs that link, the budgets themselves stay untouched.
type Category struct {
	DefaultModel
	// Uniqueness only applies to live rows so that a deleted category's
	// name can be used again
	Name     string `gorm:"uniqueIndex:idx_categories_name,where:deleted_at IS NULL"`
	Note     string
	Archived bool
	Budgets  []Budget `gorm:"many2many:budget_categories" json:"-"`
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)
	return nil
}

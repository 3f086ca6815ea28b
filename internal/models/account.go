package models

import (
	"strings"

	"gorm.io/gorm"
)

// Account represents an asset account, e.g. a bank account or a credit card.
type Account struct {
	DefaultModel
	Name     string
	Note     string
	Archived bool
}

func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)
	return nil
}

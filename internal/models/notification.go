package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NotificationType is the kind of event a notification describes.
type NotificationType string

const (
	NotificationThresholdApproaching NotificationType = "budget-threshold-approaching"
	NotificationBudgetExceeded       NotificationType = "budget-exceeded"
	NotificationPreRenewalEstimate   NotificationType = "pre-renewal-estimate"
	NotificationRenewalSummary       NotificationType = "renewal-summary"
	NotificationCardPaymentDue       NotificationType = "card-payment-due"
	NotificationInstallmentReminder  NotificationType = "installment-reminder"
)

// Notification is one entry in the append-only notification log.
//
// Only the fields relevant for the type are populated, the payload is
// sufficient to render the message without re-querying the entity it
// concerns. The engine only ever creates notifications, the read flag is
// owned by the UI layer.
type Notification struct {
	DefaultModel
	Type            NotificationType
	Read            bool
	TargetID        *uuid.UUID          // The budget or account the notification concerns
	RelatedName     string              // Name of the related entity, e.g. the budget name
	PrimaryAmount   decimal.NullDecimal `gorm:"type:DECIMAL(20,8)"`
	SecondaryAmount decimal.NullDecimal `gorm:"type:DECIMAL(20,8)"`
	Date            *time.Time
}

// AfterFind enforces the date to be in UTC.
func (n *Notification) AfterFind(tx *gorm.DB) (err error) {
	err = n.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	if n.Date != nil {
		date := n.Date.In(time.UTC)
		n.Date = &date
	}

	return nil
}

// NewAmount returns a valid NullDecimal holding d.
func NewAmount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

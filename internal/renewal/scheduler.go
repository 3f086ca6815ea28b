// Package renewal implements the daily budget renewal job.
//
// The scheduler does not own wall-clock scheduling. An external trigger, e.g.
// a cron job calling the tick endpoint, invokes Tick once per calendar day.
package renewal

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/config"
	"github.com/pocketledger/backend/internal/metrics"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/rollover"
	"github.com/pocketledger/backend/internal/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Scheduler renews recurring budgets and emits the notifications around the
// month boundary.
type Scheduler struct {
	db       *gorm.DB
	calc     *rollover.Calculator
	bus      *changebus.Bus
	settings config.Settings
	log      zerolog.Logger
}

// New returns a Scheduler with all dependencies injected.
func New(db *gorm.DB, calc *rollover.Calculator, bus *changebus.Bus, settings config.Settings, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		calc:     calc,
		bus:      bus,
		settings: settings,
		log:      log,
	}
}

// Tick runs the daily job for the given day.
//
// On the last day of a month it creates pre-renewal estimate notifications,
// on the first day of a month it renews last month's auto-renewing budgets.
// A day is never both, so the two states are mutually exclusive per tick.
// Every day it checks for upcoming scheduled payments.
//
// All inserts of one invocation are flushed in a single transaction. When
// the save fails, the run logs and exits, the next daily tick reattempts
// naturally.
func (s *Scheduler) Tick(today time.Time) {
	today = today.In(time.UTC)

	var notifications []models.Notification
	var successors []models.Budget

	if types.IsLastDay(today) {
		notifications = append(notifications, s.preRenewalEstimates(today)...)
	}

	if types.IsFirstDay(today) {
		var summary *models.Notification
		successors, summary = s.buildRenewals(today)
		if summary != nil {
			notifications = append(notifications, *summary)
		}
	}

	notifications = append(notifications, s.paymentReminders(today)...)

	if len(successors) == 0 && len(notifications) == 0 {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range successors {
			if err := tx.Create(&successors[i]).Error; err != nil {
				return err
			}
		}

		for i := range notifications {
			if err := tx.Create(&notifications[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("day", today.Format("2006-01-02")).Msg("renewal tick failed, will be reattempted on the next tick")
		return
	}

	for _, notification := range notifications {
		metrics.NotificationsCreated.WithLabelValues(string(notification.Type)).Inc()
	}

	if len(successors) > 0 {
		metrics.BudgetsRenewed.Add(float64(len(successors)))

		// Renewal is a budget mutation, it re-enters the change bus so
		// subscribers tracking the affected categories recompute.
		payload := &changebus.Payload{Kind: changebus.MutationInsert}
		for _, successor := range successors {
			payload.CategoryIDs = append(payload.CategoryIDs, successor.CategoryIDs()...)
		}

		s.bus.Publish(payload)
		metrics.PayloadsPublished.Inc()

		s.log.Info().
			Int("renewed", len(successors)).
			Str("month", types.MonthOf(today).String()).
			Msg("budgets renewed")
	}
}

// preRenewalEstimates informs about tomorrow's renewal: one estimate
// notification per auto-renewing budget of the current month. Purely
// additive, it does not gate the renewal itself.
func (s *Scheduler) preRenewalEstimates(today time.Time) []models.Notification {
	if !s.settings.NotificationsEnabled {
		return nil
	}

	month := types.MonthOf(today)

	var budgets []models.Budget
	err := s.db.Preload("Categories").
		Where("auto_renew = ?", true).
		Where("month = ?", month).
		Find(&budgets).Error
	if err != nil {
		s.log.Error().Err(err).Msg("fetching budgets for pre-renewal estimates failed")
		return nil
	}

	var notifications []models.Notification
	for _, budget := range budgets {
		estimate := s.calc.Compute(budget, month)
		renewsOn := time.Time(month.AddDate(0, 1))

		notifications = append(notifications, models.Notification{
			Type:            models.NotificationPreRenewalEstimate,
			TargetID:        &budget.ID,
			RelatedName:     budget.Name,
			PrimaryAmount:   models.NewAmount(budget.Limit),
			SecondaryAmount: models.NewAmount(estimate),
			Date:            &renewsOn,
		})
	}

	return notifications
}

// buildRenewals constructs the successor budgets for last month's
// auto-renewing budgets plus the summary notification.
func (s *Scheduler) buildRenewals(today time.Time) ([]models.Budget, *models.Notification) {
	thisMonth := types.MonthOf(today)
	lastMonth := thisMonth.AddDate(0, -1)

	var budgets []models.Budget
	err := s.db.Preload("Categories").
		Where("auto_renew = ?", true).
		Where("month = ?", lastMonth).
		Find(&budgets).Error
	if err != nil {
		s.log.Error().Err(err).Msg("fetching budgets for renewal failed")
		return nil, nil
	}

	var successors []models.Budget
	for _, budget := range budgets {
		// A budget that already has a successor was renewed by an earlier
		// tick. Without this check a second invocation on the same day
		// would create duplicate successors.
		renewed, err := budget.HasSuccessor(s.db)
		if err != nil {
			s.log.Error().Err(err).Str("budget", budget.ID.String()).Msg("successor lookup failed, skipping budget")
			continue
		}
		if renewed {
			continue
		}

		successors = append(successors, s.successor(budget, lastMonth, thisMonth))
	}

	if len(successors) == 0 {
		return nil, nil
	}

	var summary *models.Notification
	if s.settings.NotificationsEnabled {
		summary = &models.Notification{
			Type:          models.NotificationRenewalSummary,
			RelatedName:   thisMonth.Label(),
			PrimaryAmount: models.NewAmount(decimal.NewFromInt(int64(len(successors)))),
		}
	}

	return successors, summary
}

// successor clones the budget into the new month, merging the actual
// rollover of the closed month into the history.
func (s *Scheduler) successor(budget models.Budget, closedMonth, newMonth types.Month) models.Budget {
	amount := s.calc.Compute(budget, closedMonth)

	history := make(models.RolloverHistory, len(budget.RolloverHistory)+1)
	for label, carried := range budget.RolloverHistory {
		history[label] = carried
	}

	// Zero rollovers are not recorded, the history is an audit trail of
	// actual carry-forwards
	if amount.IsPositive() {
		history[closedMonth.Label()] = amount
	}

	parentID := budget.ID
	return models.Budget{
		Name:            budget.Name,
		Limit:           budget.Limit,
		Month:           newMonth,
		AutoRenew:       budget.AutoRenew,
		Rollover:        budget.Rollover,
		ParentID:        &parentID,
		CarriedOver:     history.Total(),
		RolloverHistory: history,
		Categories:      budget.Categories,
	}
}

// paymentReminders creates reminders for scheduled payments coming up in
// ReminderDays days: card payment reminders for recurring expenses on an
// account and installment reminders for installment purchases.
func (s *Scheduler) paymentReminders(today time.Time) []models.Notification {
	if !s.settings.NotificationsEnabled {
		return nil
	}

	due := today.AddDate(0, 0, s.settings.ReminderDays)
	from := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 1)

	var transactions []models.Transaction
	err := s.db.
		Where("type = ?", models.Expense).
		Where("recurrence <> ?", models.RecurrenceNone).
		Where("recurrence_group_id <> ?", uuid.Nil).
		Where("date >= ? AND date < ?", from, until).
		Find(&transactions).Error
	if err != nil {
		s.log.Error().Err(err).Msg("fetching upcoming payments failed")
		return nil
	}

	var notifications []models.Notification
	for _, transaction := range transactions {
		kind := models.NotificationCardPaymentDue
		if transaction.Installment {
			kind = models.NotificationInstallmentReminder
		} else if transaction.AccountID == nil {
			continue
		}

		date := transaction.Date
		notifications = append(notifications, models.Notification{
			Type:          kind,
			TargetID:      transaction.AccountID,
			RelatedName:   transaction.Name,
			PrimaryAmount: models.NewAmount(transaction.Amount),
			Date:          &date,
		})
	}

	return notifications
}

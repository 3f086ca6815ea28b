// Package alerts evaluates spending against budget thresholds and records
// the resulting notifications.
package alerts

import (
	"github.com/pocketledger/backend/internal/config"
	"github.com/pocketledger/backend/internal/metrics"
	"github.com/pocketledger/backend/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notifier checks budgets affected by an expense mutation and emits
// threshold notifications.
//
// It deliberately does not de-duplicate: repeated expense mutations crossing
// the same threshold within one period generate repeated notifications.
type Notifier struct {
	db        *gorm.DB
	settings  config.Settings
	threshold decimal.Decimal
	log       zerolog.Logger
}

// New returns a Notifier using the given store handle and settings.
func New(db *gorm.DB, settings config.Settings, log zerolog.Logger) *Notifier {
	return &Notifier{
		db:        db,
		settings:  settings,
		threshold: decimal.NewFromFloat(settings.AlertThreshold),
		log:       log,
	}
}

// TransactionMutated checks every budget tracking the transaction's category
// and creates threshold notifications where the period spend warrants them.
//
// It is a no-op for non-expense transactions, transactions without a
// category and when notifications are disabled. Store errors are logged and
// swallowed: threshold notifications are advisory, a missed one must never
// fail the mutation that triggered the check.
func (n *Notifier) TransactionMutated(transaction models.Transaction) {
	if transaction.Type != models.Expense || transaction.CategoryID == nil {
		return
	}

	if !n.settings.NotificationsEnabled || !n.settings.BudgetAlertsEnabled {
		return
	}

	budgets, err := models.BudgetsForCategory(n.db, *transaction.CategoryID)
	if err != nil {
		n.log.Error().Err(err).Msg("fetching budgets for threshold check failed")
		return
	}

	for _, budget := range budgets {
		n.checkBudget(budget)
	}
}

// checkBudget recomputes the budget's period spend and emits at most one
// notification. Exceeded takes precedence: once it fires, the approaching
// check is skipped for this budget in this call.
func (n *Notifier) checkBudget(budget models.Budget) {
	// A budget without a positive limit has no meaningful ratio
	if !budget.Limit.IsPositive() {
		return
	}

	spent, err := budget.Spent(n.db, budget.Month)
	if err != nil {
		n.log.Error().Err(err).Str("budget", budget.ID.String()).Msg("recomputing period spend failed")
		return
	}

	ratio := spent.Div(budget.Limit)

	var notification models.Notification
	switch {
	case ratio.GreaterThanOrEqual(decimal.New(1, 0)):
		notification = models.Notification{
			Type:            models.NotificationBudgetExceeded,
			TargetID:        &budget.ID,
			RelatedName:     budget.Name,
			PrimaryAmount:   models.NewAmount(budget.Limit),
			SecondaryAmount: models.NewAmount(spent.Sub(budget.Limit)),
		}
	case ratio.GreaterThanOrEqual(n.threshold):
		// The display layer derives the remaining amount as limit - limit*ratio
		notification = models.Notification{
			Type:            models.NotificationThresholdApproaching,
			TargetID:        &budget.ID,
			RelatedName:     budget.Name,
			PrimaryAmount:   models.NewAmount(budget.Limit),
			SecondaryAmount: models.NewAmount(ratio),
		}
	default:
		return
	}

	if err := n.db.Create(&notification).Error; err != nil {
		n.log.Error().Err(err).Str("budget", budget.ID.String()).Msg("creating threshold notification failed")
		return
	}

	metrics.NotificationsCreated.WithLabelValues(string(notification.Type)).Inc()
	n.log.Info().
		Str("budget", budget.ID.String()).
		Str("type", string(notification.Type)).
		Str("ratio", ratio.String()).
		Msg("threshold notification created")
}

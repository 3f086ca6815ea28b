package v1_test

import (
	"net/http"

	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/pocketledger/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenewalTick verifies the full path from the endpoint through the
// scheduler: replaying the first-of-month tick renews last month's budget.
func (suite *TestSuiteStandard) TestRenewalTick() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	budget := createTestBudget(suite.T(), v1.BudgetEditable{
		Name:        "Groceries",
		Limit:       decimal.NewFromFloat(1000),
		Month:       types.NewMonth(2025, 1),
		AutoRenew:   true,
		Rollover:    true,
		CategoryIDs: []uuid.UUID{category.ID},
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/renewal/tick?day=2025-02-01", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var successor models.Budget
	require.Nil(suite.T(), models.DB.Where("parent_id = ?", budget.ID).First(&successor).Error)
	assert.True(suite.T(), successor.Month.Equal(types.NewMonth(2025, 2)))

	var summaries int64
	require.Nil(suite.T(), models.DB.Model(&models.Notification{}).
		Where("type = ?", models.NotificationRenewalSummary).Count(&summaries).Error)
	assert.Equal(suite.T(), int64(1), summaries)
}

func (suite *TestSuiteStandard) TestRenewalTickInvalidDay() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/renewal/tick?day=yesterday", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

// TestRenewalTickMidMonth: a tick on an ordinary day changes nothing.
func (suite *TestSuiteStandard) TestRenewalTickMidMonth() {
	createTestBudget(suite.T(), v1.BudgetEditable{
		Month:     types.NewMonth(2025, 1),
		AutoRenew: true,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/renewal/tick?day=2025-01-15", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var budgets int64
	require.Nil(suite.T(), models.DB.Model(&models.Budget{}).Count(&budgets).Error)
	assert.Equal(suite.T(), int64(1), budgets)
}

package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestBudgetTrimWhitespace() {
	budget := suite.createTestBudget(models.Budget{
		Name:  "  Groceries \t",
		Limit: decimal.NewFromFloat(1000),
		Month: types.NewMonth(2025, 1),
	})

	assert.Equal(suite.T(), "Groceries", budget.Name)
}

func (suite *TestSuiteStandard) TestBudgetNilParentNormalized() {
	nilID := uuid.Nil
	budget := suite.createTestBudget(models.Budget{
		Name:     "Normalized",
		Limit:    decimal.NewFromFloat(100),
		Month:    types.NewMonth(2025, 1),
		ParentID: &nilID,
	})

	assert.Nil(suite.T(), budget.ParentID)
}

func (suite *TestSuiteStandard) TestBudgetSpent() {
	groceries := suite.createTestCategory(models.Category{Name: "Groceries"})
	household := suite.createTestCategory(models.Category{Name: "Household"})
	unrelated := suite.createTestCategory(models.Category{Name: "Unrelated"})

	budget := suite.createTestBudget(models.Budget{
		Name:       "Essentials",
		Limit:      decimal.NewFromFloat(1000),
		Month:      types.NewMonth(2025, 1),
		Categories: []models.Category{groceries, household},
	})

	// Two expenses in the period, in tracked categories
	suite.createTestTransaction(models.Transaction{
		Name:       "Supermarket",
		Amount:     decimal.NewFromFloat(123.45),
		Date:       time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
		Type:       models.Expense,
		CategoryID: &groceries.ID,
	})
	suite.createTestTransaction(models.Transaction{
		Name:       "Detergent",
		Amount:     decimal.NewFromFloat(76.55),
		Date:       time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC),
		Type:       models.Expense,
		CategoryID: &household.ID,
	})

	// Not counted: wrong month, wrong category, income
	suite.createTestTransaction(models.Transaction{
		Name:       "Supermarket in February",
		Amount:     decimal.NewFromFloat(50),
		Date:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Type:       models.Expense,
		CategoryID: &groceries.ID,
	})
	suite.createTestTransaction(models.Transaction{
		Name:       "Cinema",
		Amount:     decimal.NewFromFloat(30),
		Date:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:       models.Expense,
		CategoryID: &unrelated.ID,
	})
	suite.createTestTransaction(models.Transaction{
		Name:       "Salary",
		Amount:     decimal.NewFromFloat(2000),
		Date:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       models.Income,
		CategoryID: &groceries.ID,
	})

	spent, err := budget.Spent(models.DB, types.NewMonth(2025, 1))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), spent.Equal(decimal.NewFromFloat(200)), "expected 200, got %s", spent)
}

func (suite *TestSuiteStandard) TestBudgetSpentWithoutCategories() {
	budget := suite.createTestBudget(models.Budget{
		Name:  "Empty",
		Limit: decimal.NewFromFloat(1000),
		Month: types.NewMonth(2025, 1),
	})

	spent, err := budget.Spent(models.DB, types.NewMonth(2025, 1))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), spent.IsZero())
}

func (suite *TestSuiteStandard) TestBudgetHasSuccessor() {
	budget := suite.createTestBudget(models.Budget{
		Name:  "January",
		Limit: decimal.NewFromFloat(500),
		Month: types.NewMonth(2025, 1),
	})

	renewed, err := budget.HasSuccessor(models.DB)
	require.Nil(suite.T(), err)
	assert.False(suite.T(), renewed)

	suite.createTestBudget(models.Budget{
		Name:     "February",
		Limit:    decimal.NewFromFloat(500),
		Month:    types.NewMonth(2025, 2),
		ParentID: &budget.ID,
	})

	renewed, err = budget.HasSuccessor(models.DB)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), renewed)
}

func (suite *TestSuiteStandard) TestBudgetsForCategory() {
	groceries := suite.createTestCategory(models.Category{Name: "Groceries"})
	other := suite.createTestCategory(models.Category{Name: "Other"})

	essentials := suite.createTestBudget(models.Budget{
		Name:       "Essentials",
		Limit:      decimal.NewFromFloat(1000),
		Month:      types.NewMonth(2025, 1),
		Categories: []models.Category{groceries},
	})
	suite.createTestBudget(models.Budget{
		Name:       "Fun",
		Limit:      decimal.NewFromFloat(200),
		Month:      types.NewMonth(2025, 1),
		Categories: []models.Category{other},
	})

	budgets, err := models.BudgetsForCategory(models.DB, groceries.ID)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), budgets, 1)
	assert.Equal(suite.T(), essentials.ID, budgets[0].ID)
	assert.Len(suite.T(), budgets[0].Categories, 1)
}

func (suite *TestSuiteStandard) TestRolloverHistorySerialization() {
	budget := suite.createTestBudget(models.Budget{
		Name:        "With history",
		Limit:       decimal.NewFromFloat(1000),
		Month:       types.NewMonth(2025, 3),
		CarriedOver: decimal.NewFromFloat(150),
		RolloverHistory: models.RolloverHistory{
			"January 2025":  decimal.NewFromFloat(100),
			"February 2025": decimal.NewFromFloat(50),
		},
	})

	var reloaded models.Budget
	require.Nil(suite.T(), models.DB.First(&reloaded, budget.ID).Error)

	require.Len(suite.T(), reloaded.RolloverHistory, 2)
	assert.True(suite.T(), reloaded.RolloverHistory["January 2025"].Equal(decimal.NewFromFloat(100)))
	assert.True(suite.T(), reloaded.RolloverHistory.Total().Equal(decimal.NewFromFloat(150)))
}

func (suite *TestSuiteStandard) TestRolloverHistoryTotal() {
	tests := []struct {
		name     string
		history  models.RolloverHistory
		expected decimal.Decimal
	}{
		{"empty", models.RolloverHistory{}, decimal.Zero},
		{"single", models.RolloverHistory{"January 2025": decimal.NewFromFloat(400)}, decimal.NewFromFloat(400)},
		{
			"multiple",
			models.RolloverHistory{
				"January 2025":  decimal.NewFromFloat(400),
				"February 2025": decimal.NewFromFloat(0.5),
			},
			decimal.NewFromFloat(400.5),
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.history.Total().Equal(tt.expected))
		})
	}
}

package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTransaction(t *testing.T, e v1.TransactionEditable, expectedStatus ...int) models.Transaction {
	if e.Name == "" {
		e.Name = uuid.NewString()
	}

	if e.Amount.IsZero() {
		e.Amount = decimal.NewFromFloat(10)
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions", e)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var transaction models.Transaction
	if r.Code == http.StatusCreated {
		test.DecodeResponse(t, &r, &transaction)
	}

	return transaction
}

func (suite *TestSuiteStandard) TestTransactionsCreate() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})

	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{
		Name:       "Supermarket",
		Amount:     decimal.NewFromFloat(42.5),
		Date:       time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		CategoryID: &category.ID,
	})

	assert.Equal(suite.T(), "Supermarket", transaction.Name)
	assert.True(suite.T(), transaction.Amount.Equal(decimal.NewFromFloat(42.5)))
	assert.Equal(suite.T(), models.Expense, transaction.Type)
	require.NotNil(suite.T(), transaction.CategoryID)
	assert.Equal(suite.T(), category.ID, *transaction.CategoryID)
}

func (suite *TestSuiteStandard) TestTransactionsCreateInvalid() {
	tests := []struct {
		name string
		body string
	}{
		{"Broken JSON", `{ "name": "foo"`},
		{"No amount", `{ "name": "foo" }`},
		{"Negative amount", `{ "name": "foo", "amount": "-10" }`},
		{"Invalid type", `{ "name": "foo", "amount": "10", "type": "transfer" }`},
		{"Invalid recurrence", `{ "name": "foo", "amount": "10", "recurrence": "weekly" }`},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

// TestTransactionsCreateExceedsBudget verifies that an expense pushing a
// budget over its limit creates an exceeded notification.
func (suite *TestSuiteStandard) TestTransactionsCreateExceedsBudget() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	createTestBudget(suite.T(), v1.BudgetEditable{
		Limit:       decimal.NewFromFloat(500),
		CategoryIDs: []uuid.UUID{category.ID},
	})

	createTestTransaction(suite.T(), v1.TransactionEditable{
		Name:       "Blowout",
		Amount:     decimal.NewFromFloat(550),
		Date:       time.Now().In(time.UTC),
		CategoryID: &category.ID,
	})

	var notifications []models.Notification
	require.Nil(suite.T(), models.DB.Where("type = ?", models.NotificationBudgetExceeded).Find(&notifications).Error)
	require.Len(suite.T(), notifications, 1)
	assert.True(suite.T(), notifications[0].SecondaryAmount.Decimal.Equal(decimal.NewFromFloat(50)))
}

func (suite *TestSuiteStandard) TestTransactionsGetFilters() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})

	createTestTransaction(suite.T(), v1.TransactionEditable{Name: "Salary", Type: models.Income})
	createTestTransaction(suite.T(), v1.TransactionEditable{Name: "Food", CategoryID: &category.ID})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All", "", 2},
		{"Income only", "?type=income", 1},
		{"Expense only", "?type=expense", 1},
		{"By category", "?category=" + category.ID.String(), 1},
		{"By unknown account", "?account=" + uuid.New().String(), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/transactions"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var transactions []models.Transaction
			test.DecodeResponse(t, &r, &transactions)
			assert.Len(t, transactions, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsGetInvalidFilters() {
	tests := []struct {
		name  string
		query string
	}{
		{"Invalid type", "?type=transfer"},
		{"Invalid category", "?category=NotAUUID"},
		{"Invalid account", "?account=NotAUUID"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/transactions"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsDelete() {
	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/%s", transaction.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/%s", transaction.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestTransactionsDeleteRunsThresholdCheck: deletions mutate the period
// spend, so they run the threshold check just like creations. Deleting an
// expense that leaves the remaining spend above the threshold must emit an
// approaching notification.
func (suite *TestSuiteStandard) TestTransactionsDeleteRunsThresholdCheck() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	createTestBudget(suite.T(), v1.BudgetEditable{
		Limit:       decimal.NewFromFloat(500),
		CategoryIDs: []uuid.UUID{category.ID},
	})

	// Created directly on the store so only the deletion runs the check
	base := models.Transaction{
		Name:       "Supermarket",
		Amount:     decimal.NewFromFloat(450),
		Date:       time.Now().In(time.UTC),
		Type:       models.Expense,
		CategoryID: &category.ID,
	}
	require.Nil(suite.T(), models.DB.Create(&base).Error)

	extra := models.Transaction{
		Name:       "Returned purchase",
		Amount:     decimal.NewFromFloat(100),
		Date:       time.Now().In(time.UTC),
		Type:       models.Expense,
		CategoryID: &category.ID,
	}
	require.Nil(suite.T(), models.DB.Create(&extra).Error)

	// 550 spent against a limit of 500. Deleting the 100 expense leaves
	// 450, a ratio of 0.9 above the 0.8 threshold.
	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/%s", extra.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var notifications []models.Notification
	require.Nil(suite.T(), models.DB.
		Where("type = ?", models.NotificationThresholdApproaching).
		Find(&notifications).Error)
	require.Len(suite.T(), notifications, 1)
	assert.True(suite.T(), notifications[0].SecondaryAmount.Decimal.Equal(decimal.NewFromFloat(0.9)))
}

func (suite *TestSuiteStandard) TestTransactionsDeleteNotFound() {
	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestTransactionsDeleteSeries verifies the series endpoint deletes every
// member of the recurrence group and nothing else.
func (suite *TestSuiteStandard) TestTransactionsDeleteSeries() {
	groupID := uuid.New()

	for _, name := range []string{"Rent January", "Rent February"} {
		createTestTransaction(suite.T(), v1.TransactionEditable{
			Name:              name,
			Recurrence:        models.RecurrenceMonthly,
			RecurrenceGroupID: groupID,
		})
	}
	survivor := createTestTransaction(suite.T(), v1.TransactionEditable{Name: "One-off"})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/series/%s", groupID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var remaining []models.Transaction
	require.Nil(suite.T(), models.DB.Find(&remaining).Error)
	require.Len(suite.T(), remaining, 1)
	assert.Equal(suite.T(), survivor.ID, remaining[0].ID)
}

// TestTransactionsDeleteSeriesNilGroup: the nil UUID never deletes anything,
// it is the marker for one-off transactions.
func (suite *TestSuiteStandard) TestTransactionsDeleteSeriesNilGroup() {
	createTestTransaction(suite.T(), v1.TransactionEditable{Name: "One-off"})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/series/%s", uuid.Nil), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var count int64
	require.Nil(suite.T(), models.DB.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

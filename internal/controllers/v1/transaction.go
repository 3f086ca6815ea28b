package v1

import (
	"net/http"
	"time"

	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/metrics"
	"github.com/pocketledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

func (api *API) registerTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGetPost)
	r.GET("", api.GetTransactions)
	r.POST("", api.CreateTransaction)

	r.OPTIONS("/:id", httputil.OptionsGetDelete)
	r.GET("/:id", api.GetTransaction)
	r.DELETE("/:id", api.DeleteTransaction)

	r.OPTIONS("/series/:id", httputil.OptionsDelete)
	r.DELETE("/series/:id", api.DeleteTransactionSeries)
}

// TransactionEditable are the fields settable on transaction creation.
type TransactionEditable struct {
	Name              string                 `json:"name" binding:"required"`
	Amount            decimal.Decimal        `json:"amount"`
	Date              time.Time              `json:"date"`
	Type              models.TransactionType `json:"type"`
	CategoryID        *uuid.UUID             `json:"categoryId"`
	AccountID         *uuid.UUID             `json:"accountId"`
	Recurrence        models.RecurrenceKind  `json:"recurrence"`
	RecurrenceGroupID uuid.UUID              `json:"recurrenceGroupId"`
	Installment       bool                   `json:"installment"`
}

func (e TransactionEditable) model() models.Transaction {
	return models.Transaction{
		Name:              e.Name,
		Amount:            e.Amount,
		Date:              e.Date,
		Type:              e.Type,
		CategoryID:        e.CategoryID,
		AccountID:         e.AccountID,
		Recurrence:        e.Recurrence,
		RecurrenceGroupID: e.RecurrenceGroupID,
		Installment:       e.Installment,
	}
}

// GetTransactions returns transactions, newest first. Optional filters:
// type, category, account.
func (api *API) GetTransactions(c *gin.Context) {
	var pagination Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		abort(c, err)
		return
	}

	query := api.DB.Order("date(date) DESC, date DESC")

	if kind, ok := c.GetQuery("type"); ok {
		if !slices.Contains([]string{string(models.Income), string(models.Expense)}, kind) {
			abort(c, models.ErrTransactionTypeInvalid)
			return
		}

		query = query.Where("type = ?", kind)
	}

	if id, ok := c.GetQuery("category"); ok {
		categoryID, err := uuid.Parse(id)
		if err != nil {
			abort(c, err)
			return
		}

		query = query.Where("category_id = ?", categoryID)
	}

	if id, ok := c.GetQuery("account"); ok {
		accountID, err := uuid.Parse(id)
		if err != nil {
			abort(c, err)
			return
		}

		query = query.Where("account_id = ?", accountID)
	}

	var transactions []models.Transaction
	err := query.Offset(int(pagination.Offset)).Limit(pagination.Limit).Find(&transactions).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns a specific transaction.
func (api *API) GetTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	if err := api.DB.First(&transaction, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// CreateTransaction creates a transaction, runs the threshold check for it
// and publishes the mutation on the change bus.
func (api *API) CreateTransaction(c *gin.Context) {
	var editable TransactionEditable
	if err := c.ShouldBindJSON(&editable); err != nil {
		abort(c, err)
		return
	}

	transaction := editable.model()
	if err := api.DB.Create(&transaction).Error; err != nil {
		abort(c, err)
		return
	}

	// Synchronous threshold check, then asynchronous fan-out
	api.Notifier.TransactionMutated(transaction)

	payload := &changebus.Payload{Kind: changebus.MutationInsert}
	if transaction.AccountID != nil {
		payload.AccountIDs = append(payload.AccountIDs, *transaction.AccountID)
	}
	if transaction.CategoryID != nil {
		payload.CategoryIDs = append(payload.CategoryIDs, *transaction.CategoryID)
	}

	api.Bus.Publish(payload)
	metrics.PayloadsPublished.Inc()

	c.JSON(http.StatusCreated, transaction)
}

// DeleteTransaction deletes a single transaction on the request goroutine,
// intended for immediate UI feedback.
func (api *API) DeleteTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	if err := api.DB.First(&transaction, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := api.Worker.DeleteSingle(transaction); err != nil {
		abort(c, err)
		return
	}

	// The deletion changed the period spend, so the threshold check runs
	// for deletions just like for creations
	api.Notifier.TransactionMutated(transaction)

	c.Status(http.StatusNoContent)
}

// DeleteTransactionSeries deletes a whole recurring series. The deletion
// runs on the worker's dedicated connection, the handler waits for it so the
// UI can show a blocking progress indicator. Canceling the request stops the
// wait, not the deletion.
func (api *API) DeleteTransactionSeries(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	handle := api.Worker.DeleteSeries(c.Request.Context(), uri.ID.UUID)
	if err := handle.Wait(c.Request.Context()); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

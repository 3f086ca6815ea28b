// Package v1 implements the HTTP boundary of the budget engine. It is
// consumed by the UI layer, which owns all rendering and localization.
package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketledger/backend/internal/alerts"
	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/renewal"
	"github.com/pocketledger/backend/internal/series"
	ez_uuid "github.com/pocketledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles the engine services the handlers dispatch to. It is
// constructed once at process start.
type API struct {
	DB        *gorm.DB
	Bus       *changebus.Bus
	Notifier  *alerts.Notifier
	Scheduler *renewal.Scheduler
	Worker    *series.Worker
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	api.registerBudgetRoutes(r.Group("/budgets"))
	api.registerCategoryRoutes(r.Group("/categories"))
	api.registerTransactionRoutes(r.Group("/transactions"))
	api.registerNotificationRoutes(r.Group("/notifications"))
	api.registerRenewalRoutes(r.Group("/renewal"))
}

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

func abort(c *gin.Context, err error) {
	c.JSON(status(err), httpError{Error: err.Error()})
}

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// Pagination are the list endpoint paging parameters.
type Pagination struct {
	Offset uint `form:"offset"`           // The offset of the first resource returned. Defaults to 0.
	Limit  int  `form:"limit,default=50"` // Maximum number of resources to return. Defaults to 50.
}

func nowUTC() time.Time {
	return time.Now().In(time.UTC)
}

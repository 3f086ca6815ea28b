package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (api *API) registerBudgetRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGetPost)
	r.GET("", api.GetBudgets)
	r.POST("", api.CreateBudget)

	r.OPTIONS("/:id", httputil.OptionsGet)
	r.GET("/:id", api.GetBudget)
}

// BudgetEditable are the fields settable on budget creation.
type BudgetEditable struct {
	Name        string          `json:"name" binding:"required"`
	Limit       decimal.Decimal `json:"limit"`
	Month       types.Month     `json:"month"`
	AutoRenew   bool            `json:"autoRenew"`
	Rollover    bool            `json:"rollover"`
	CategoryIDs []uuid.UUID     `json:"categoryIds"`
}

// BudgetResponse is a budget together with its computed period spend.
type BudgetResponse struct {
	models.Budget
	Spent decimal.Decimal `json:"spent"`
}

func (api *API) newBudgetResponse(budget models.Budget) BudgetResponse {
	// Spend is computed, a store error degrades to zero
	spent, _ := budget.Spent(api.DB, budget.Month)
	return BudgetResponse{Budget: budget, Spent: spent}
}

// GetBudgets returns all budgets, optionally filtered by month.
func (api *API) GetBudgets(c *gin.Context) {
	query := api.DB.Preload("Categories")

	if monthString, ok := c.GetQuery("month"); ok {
		month, err := types.ParseMonth(monthString)
		if err != nil {
			abort(c, err)
			return
		}

		query = query.Where("month = ?", month)
	}

	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		abort(c, err)
		return
	}

	data := make([]BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		data = append(data, api.newBudgetResponse(budget))
	}

	c.JSON(http.StatusOK, data)
}

// GetBudget returns a specific budget.
func (api *API) GetBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var budget models.Budget
	err := api.DB.Preload("Categories").First(&budget, uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, api.newBudgetResponse(budget))
}

// CreateBudget creates a new budget for one period.
func (api *API) CreateBudget(c *gin.Context) {
	var editable BudgetEditable
	if err := c.ShouldBindJSON(&editable); err != nil {
		abort(c, err)
		return
	}

	budget := models.Budget{
		Name:      editable.Name,
		Limit:     editable.Limit,
		Month:     editable.Month,
		AutoRenew: editable.AutoRenew,
		Rollover:  editable.Rollover,
	}

	if budget.Month.IsZero() {
		budget.Month = types.MonthOf(nowUTC())
	}

	if len(editable.CategoryIDs) > 0 {
		var categories []models.Category
		err := api.DB.Where("id IN ?", editable.CategoryIDs).Find(&categories).Error
		if err != nil {
			abort(c, err)
			return
		}

		budget.Categories = categories
	}

	if err := api.DB.Create(&budget).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.newBudgetResponse(budget))
}

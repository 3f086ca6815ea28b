package v1

import (
	"net/http"

	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/metrics"
	"github.com/pocketledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (api *API) registerCategoryRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGetPost)
	r.GET("", api.GetCategories)
	r.POST("", api.CreateCategory)

	r.OPTIONS("/:id", httputil.OptionsGetDelete)
	r.GET("/:id", api.GetCategory)
	r.DELETE("/:id", api.DeleteCategory)
}

// CategoryEditable are the fields settable on category creation.
type CategoryEditable struct {
	Name string `json:"name" binding:"required"`
	Note string `json:"note"`
}

// GetCategories returns all categories.
func (api *API) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := api.DB.Find(&categories).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory returns a specific category.
func (api *API) GetCategory(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var category models.Category
	if err := api.DB.First(&category, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory creates a new category.
func (api *API) CreateCategory(c *gin.Context) {
	var editable CategoryEditable
	if err := c.ShouldBindJSON(&editable); err != nil {
		abort(c, err)
		return
	}

	category := models.Category{Name: editable.Name, Note: editable.Note}
	if err := api.DB.Create(&category).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory deletes a category. Budgets tracking the category lose the
// link but are kept.
func (api *API) DeleteCategory(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var category models.Category
	if err := api.DB.First(&category, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := api.DB.Delete(&category).Error; err != nil {
		abort(c, err)
		return
	}

	api.Bus.Publish(&changebus.Payload{
		Kind:        changebus.MutationDelete,
		CategoryIDs: []uuid.UUID{category.ID},
	})
	metrics.PayloadsPublished.Inc()

	c.Status(http.StatusNoContent)
}

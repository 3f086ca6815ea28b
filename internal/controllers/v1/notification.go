package v1

import (
	"net/http"

	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func (api *API) registerNotificationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", api.GetNotifications)

	r.OPTIONS("/:id", httputil.OptionsGetPatch)
	r.GET("/:id", api.GetNotification)
	r.PATCH("/:id", api.UpdateNotification)
}

// NotificationUpdate is the only mutation the UI performs on notifications.
type NotificationUpdate struct {
	Read bool `json:"read"`
}

// GetNotifications returns notifications, newest first. With ?unread=true
// only unread ones are returned.
func (api *API) GetNotifications(c *gin.Context) {
	var pagination Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		abort(c, err)
		return
	}

	query := api.DB.Order("created_at DESC")
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := query.Offset(int(pagination.Offset)).Limit(pagination.Limit).Find(&notifications).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// GetNotification returns a specific notification.
func (api *API) GetNotification(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var notification models.Notification
	if err := api.DB.First(&notification, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// UpdateNotification flips the read flag. The engine itself never reads it.
func (api *API) UpdateNotification(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		abort(c, err)
		return
	}

	var notification models.Notification
	if err := api.DB.First(&notification, uri.ID.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var update NotificationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		abort(c, err)
		return
	}

	err := api.DB.Model(&notification).Select("Read").Updates(models.Notification{Read: update.Read}).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

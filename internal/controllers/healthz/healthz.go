// Package healthz implements the application health endpoint.
package healthz

import (
	"net/http"

	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", Options)
	r.GET("", Get)
}

// Options returns an empty response with the HTTP Header "allow" set to the
// allowed HTTP verbs.
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Get returns the application health and, if not healthy, an error.
func Get(c *gin.Context) {
	sqlDB, err := models.DB.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = sqlDB.Ping()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

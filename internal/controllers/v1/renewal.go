package v1

import (
	"net/http"
	"time"

	"github.com/pocketledger/backend/internal/httputil"
	"github.com/gin-gonic/gin"
)

func (api *API) registerRenewalRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/tick", httputil.OptionsPost)
	r.POST("/tick", api.RenewalTick)
}

// RenewalTick runs the daily renewal job. The endpoint is invoked once per
// calendar day by an external scheduler, the engine does not own wall-clock
// scheduling.
//
// The optional ?day=YYYY-MM-DD parameter overrides "today", e.g. to replay
// a missed tick.
func (api *API) RenewalTick(c *gin.Context) {
	day := nowUTC()

	if dayString, ok := c.GetQuery("day"); ok {
		parsed, err := time.Parse("2006-01-02", dayString)
		if err != nil {
			abort(c, err)
			return
		}

		day = parsed
	}

	api.Scheduler.Tick(day)
	c.Status(http.StatusNoContent)
}

// Package router sets up the gin engine and its middlewares.
package router

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/config"
	"github.com/pocketledger/backend/internal/controllers/healthz"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

// Router sets up the engine and registers all routes.
func Router(settings config.Settings, api *v1.API) (*gin.Engine, error) {
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(ginlogger.SetLogger(
		ginlogger.WithDefaultLevel(zerolog.InfoLevel),
		ginlogger.WithClientErrorLevel(zerolog.InfoLevel),
		ginlogger.WithServerErrorLevel(zerolog.ErrorLevel),
		ginlogger.WithLogger(func(c *gin.Context, out io.Writer, latency time.Duration) zerolog.Logger {
			return log.Logger.With().
				Str("request-id", requestid.Get(c)).
				Dur("latency", latency).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	if settings.CORSAllowOrigins != "" {
		log.Debug().Str("allowOrigins", settings.CORSAllowOrigins).Msg("CORS")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Fields(settings.CORSAllowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	if gin.IsDebugging() {
		pprof.Register(r)
	}

	/*
	 *  Route setup
	 */
	r.GET("", GetRoot)
	r.OPTIONS("", OptionsRoot)
	r.GET("/version", GetVersion)
	r.OPTIONS("/version", OptionsVersion)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthz.RegisterRoutes(r.Group("/healthz"))

	group := r.Group("/v1")
	{
		group.GET("", GetV1)
		group.OPTIONS("", OptionsV1)
	}
	api.RegisterRoutes(group)

	log.Info().Msg("backend startup complete")

	return r, nil
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Healthz string `json:"healthz" example:"https://example.com/healthz"`
	Metrics string `json:"metrics" example:"https://example.com/metrics"`
	Version string `json:"version" example:"https://example.com/version"`
	V1      string `json:"v1" example:"https://example.com/v1"`
}

// GetRoot is the entrypoint for the API, listing all endpoints.
func GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Healthz: "/healthz",
			Metrics: "/metrics",
			Version: "/version",
			V1:      "/v1",
		},
	})
}

func OptionsRoot(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

type VersionResponse struct {
	Data VersionObject `json:"data"`
}

type VersionObject struct {
	Version string `json:"version" example:"1.0.0"`
}

// GetVersion returns the version of the backend.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

func OptionsVersion(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

type V1Response struct {
	Links V1Links `json:"links"`
}

type V1Links struct {
	Budgets       string `json:"budgets" example:"https://example.com/v1/budgets"`
	Categories    string `json:"categories" example:"https://example.com/v1/categories"`
	Transactions  string `json:"transactions" example:"https://example.com/v1/transactions"`
	Notifications string `json:"notifications" example:"https://example.com/v1/notifications"`
	Renewal       string `json:"renewal" example:"https://example.com/v1/renewal/tick"`
}

// GetV1 returns the links for API v1.
func GetV1(c *gin.Context) {
	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Budgets:       "/v1/budgets",
			Categories:    "/v1/categories",
			Transactions:  "/v1/transactions",
			Notifications: "/v1/notifications",
			Renewal:       "/v1/renewal/tick",
		},
	})
}

func OptionsV1(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

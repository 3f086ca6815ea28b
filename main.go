package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pocketledger/backend/internal/alerts"
	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/config"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/renewal"
	"github.com/pocketledger/backend/internal/rollover"
	"github.com/pocketledger/backend/internal/router"
	"github.com/pocketledger/backend/internal/series"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A local .env is optional, the environment always wins
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	settings := config.Load()

	// Create the data directory
	err := os.MkdirAll(filepath.Dir(settings.DBPath), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database and migrate the schema
	err = models.Connect(settings.DBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The series deletion worker gets its own connection so that bulk
	// deletes never block the request handlers
	workerConn, err := models.Open(settings.DBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Wire the engine services. Each is constructed exactly once and holds
	// its dependencies by reference.
	bus := changebus.New()
	calc := rollover.New(models.DB, log.Logger)
	notifier := alerts.New(models.DB, settings, log.Logger)
	scheduler := renewal.New(models.DB, calc, bus, settings, log.Logger)
	worker := series.NewWorker(models.DB, workerConn, bus, log.Logger)

	api := &v1.API{
		DB:        models.DB,
		Bus:       bus,
		Notifier:  notifier,
		Scheduler: scheduler,
		Worker:    worker,
	}

	r, err := router.Router(settings, api)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DB is the database used by the engine.
//
// Components hold their own reference to it, which is handed to them at
// construction. The package level variable exists for the model hooks and
// the test helpers.
var DB *gorm.DB

// Connect opens the SQLite database, migrates the schema and sets DB.
func Connect(dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}

	err = db.AutoMigrate(Budget{}, Category{}, Account{}, Transaction{}, Notification{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	DB = db
	return nil
}

// Open opens a connection to the SQLite database at dsn and configures the
// connection pool.
//
// It does not touch the DB package variable. The series deletion worker uses
// it to get a dedicated connection so that long running bulk deletes never
// block the connection the request handlers use.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
	}

	if !strings.Contains(dsn, "?") {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	for name, callback := range map[string]func(*gorm.DB){
		"pocketledger:after_query":         queryCallback,
		"pocketledger:after_query_general": generalCallback,
	} {
		if err := db.Callback().Query().After("*").Register(name, callback); err != nil {
			return nil, err
		}
	}

	for name, callback := range map[string]func(*gorm.DB){
		"pocketledger:after_create":         createUpdateCallback,
		"pocketledger:after_create_general": generalCallback,
	} {
		if err := db.Callback().Create().After("*").Register(name, callback); err != nil {
			return nil, err
		}
	}

	for name, callback := range map[string]func(*gorm.DB){
		"pocketledger:after_update":         createUpdateCallback,
		"pocketledger:after_update_general": generalCallback,
	} {
		if err := db.Callback().Update().After("*").Register(name, callback); err != nil {
			return nil, err
		}
	}

	if err := db.Callback().Delete().After("*").Register("pocketledger:after_delete_general", generalCallback); err != nil {
		return nil, err
	}

	return db, nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: categories.name") {
		db.Error = ErrCategoryNameNotUnique
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user.
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// Package config reads the engine settings from the environment.
package config

import (
	"os"
	"strconv"
)

// Settings are the read-only configuration inputs of the engine.
type Settings struct {
	// Database
	DBPath string

	// HTTP surface
	CORSAllowOrigins string

	// Notifications
	NotificationsEnabled bool    // master switch for all notification creation
	BudgetAlertsEnabled  bool    // switch for threshold notifications
	AlertThreshold       float64 // spend/limit ratio above which an approaching notification fires
	ReminderDays         int     // days of advance notice for upcoming payment reminders
}

// Load reads the settings from environment variables, falling back to
// defaults where unset.
func Load() Settings {
	return Settings{
		DBPath:           getEnv("DB_PATH", "data/pocketledger.db"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),

		NotificationsEnabled: getEnvBool("NOTIFICATIONS_ENABLED", true),
		BudgetAlertsEnabled:  getEnvBool("BUDGET_ALERTS_ENABLED", true),
		AlertThreshold:       getEnvFloat("ALERT_THRESHOLD", 0.8),
		ReminderDays:         getEnvInt("REMINDER_DAYS", 3),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

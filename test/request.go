package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Settings returns the configuration the test router runs with.
func Settings() config.Settings {
	return config.Settings{
		NotificationsEnabled: true,
		BudgetAlertsEnabled:  true,
		AlertThreshold:       0.8,
		ReminderDays:         3,
	}
}

// API wires the engine services against the test database.
//
// The series worker shares the single test connection, sqlite serializes
// access through the pool so this behaves like a dedicated connection.
func API() *v1.API {
	log := zerolog.Nop()
	bus := changebus.New()
	calc := rollover.New(models.DB, log)
	settings := Settings()

	return &v1.API{
		DB:        models.DB,
		Bus:       bus,
		Notifier:  alerts.New(models.DB, settings, log),
		Scheduler: renewal.New(models.DB, calc, bus, settings, log),
		Worker:    series.NewWorker(models.DB, models.DB, bus, log),
	}
}

// Request is a helper method to simplify making a HTTP request for tests.
func Request(t *testing.T, method, reqURL string, body any, headers ...map[string]string) httptest.ResponseRecorder {
	var byteBuffer *bytes.Buffer

	// If the body is a string, convert it to bytes
	if reflect.TypeOf(body).Kind() == reflect.String {
		byteBuffer = bytes.NewBufferString(body.(string))
	} else if reflect.TypeOf(body).Kind() == reflect.Struct || reflect.TypeOf(body).Kind() == reflect.Map || reflect.TypeOf(body).Kind() == reflect.Slice {
		byteStr, err := json.Marshal(body)
		if err != nil {
			assert.Fail(t, "Request body could not be marshalled from struct input", err)
		}
		byteBuffer = bytes.NewBuffer(byteStr)
	} else {
		// Assume we got sent a *bytes.Buffer for e.g. a file
		byteBuffer = body.(*bytes.Buffer)
	}

	r, err := router.Router(Settings(), API())
	if err != nil {
		assert.FailNow(t, "Router could not be initialized")
	}

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, reqURL, byteBuffer)

	for _, headerMap := range headers {
		for header, value := range headerMap {
			req.Header.Set(header, value)
		}
	}

	r.ServeHTTP(recorder, req)

	return *recorder
}

// DecodeResponse decodes an HTTP response into a target struct.
func DecodeResponse(t *testing.T, r *httptest.ResponseRecorder, target any) {
	err := json.Unmarshal(r.Body.Bytes(), &target)
	if err != nil {
		assert.FailNow(t, "Parsing error", "Unable to parse response from server %q into %v, '%v', Request ID: %s", r.Body, reflect.TypeOf(target), err, r.Result().Header.Get("x-request-id"))
	}
}

// AssertHTTPStatus verifies that the HTTP response status is correct
func AssertHTTPStatus(t *testing.T, r *httptest.ResponseRecorder, expectedStatus ...int) {
	require.Contains(t, expectedStatus, r.Code, "HTTP status is wrong. Request ID: '%s' Response body: %s", r.Result().Header.Get("x-request-id"), r.Body.String())
}

package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) createTestNotification(notification models.Notification) models.Notification {
	if notification.Type == "" {
		notification.Type = models.NotificationBudgetExceeded
	}

	require.Nil(suite.T(), models.DB.Create(&notification).Error)
	return notification
}

func (suite *TestSuiteStandard) TestNotificationsGet() {
	first := suite.createTestNotification(models.Notification{RelatedName: "First"})

	// The list is ordered newest first
	time.Sleep(10 * time.Millisecond)
	second := suite.createTestNotification(models.Notification{RelatedName: "Second"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/notifications", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var notifications []models.Notification
	test.DecodeResponse(suite.T(), &r, &notifications)
	require.Len(suite.T(), notifications, 2)
	assert.Equal(suite.T(), second.ID, notifications[0].ID)
	assert.Equal(suite.T(), first.ID, notifications[1].ID)
}

func (suite *TestSuiteStandard) TestNotificationsGetUnread() {
	suite.createTestNotification(models.Notification{RelatedName: "Unread"})
	read := suite.createTestNotification(models.Notification{RelatedName: "Read"})
	require.Nil(suite.T(), models.DB.Model(&read).Select("Read").Updates(models.Notification{Read: true}).Error)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/notifications?unread=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var notifications []models.Notification
	test.DecodeResponse(suite.T(), &r, &notifications)
	require.Len(suite.T(), notifications, 1)
	assert.Equal(suite.T(), "Unread", notifications[0].RelatedName)
}

func (suite *TestSuiteStandard) TestNotificationsGetSingle() {
	notification := suite.createTestNotification(models.Notification{
		RelatedName:   "Groceries",
		PrimaryAmount: models.NewAmount(decimal.NewFromFloat(500)),
	})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing notification", notification.ID.String(), http.StatusOK},
		{"No notification with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/notifications/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestNotificationsMarkRead verifies the only mutation the UI performs:
// flipping the read flag.
func (suite *TestSuiteStandard) TestNotificationsMarkRead() {
	notification := suite.createTestNotification(models.Notification{RelatedName: "Groceries"})
	assert.False(suite.T(), notification.Read)

	r := test.Request(suite.T(), http.MethodPatch,
		fmt.Sprintf("http://example.com/v1/notifications/%s", notification.ID),
		v1.NotificationUpdate{Read: true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var reloaded models.Notification
	require.Nil(suite.T(), models.DB.First(&reloaded, notification.ID).Error)
	assert.True(suite.T(), reloaded.Read)
}

func (suite *TestSuiteStandard) TestNotificationsMarkReadInvalidBody() {
	notification := suite.createTestNotification(models.Notification{})

	r := test.Request(suite.T(), http.MethodPatch,
		fmt.Sprintf("http://example.com/v1/notifications/%s", notification.ID), `{ "read": `)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

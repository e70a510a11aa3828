package notifications_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/handlers/notifications"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/notify"
	"github/chapool/ledger-login/internal/test"
)

func TestGetNotifications(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		s.Notifications.Error(t.Context(), ledger.Notification{Title: ledger.MessageError, Message: "device busy", Timeout: ledger.NotificationTimeout})
		s.Notifications.Success(t.Context(), ledger.Notification{Title: ledger.MessageLoginSuccess, Timeout: ledger.NotificationTimeout})

		res := test.PerformRequest(t, s, "GET", "/api/v1/notifications", nil, http.Header{"Accept-Language": []string{"de-DE,de;q=0.9"}})
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body notifications.Response
		test.ParseResponseBody(t, res, &body)

		assert.Equal(t, uint64(2), body.LastSeq)
		require.Len(t, body.Notifications, 2)
		assert.Equal(t, notify.LevelError, body.Notifications[0].Level)
		assert.Equal(t, "Ledger-Fehler", body.Notifications[0].Title)
		assert.Equal(t, "device busy", body.Notifications[0].Message)
		assert.Equal(t, int64(5000), body.Notifications[0].TimeoutMS)
		assert.Equal(t, "Mit Ledger angemeldet", body.Notifications[1].Title)
		assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Equal(time.Time(body.Notifications[0].CreatedAt)))
		require.NoError(t, body.Validate(strfmt.Default))

		res = test.PerformRequest(t, s, "GET", "/api/v1/notifications?after=1", nil, nil)
		body = notifications.Response{}
		test.ParseResponseBody(t, res, &body)
		require.Len(t, body.Notifications, 1)
		assert.Equal(t, "Logged in with Ledger", body.Notifications[0].Title)
	})
}

func TestGetNotificationsInvalidAfter(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/notifications?after=-3", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestInvalidAfter)
	})
}

func TestNotificationValidateLevel(t *testing.T) {
	n := &notifications.Notification{Level: "warning", CreatedAt: strfmt.DateTime(time.Now())}

	err := n.Validate(strfmt.Default)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level in body should be one of")
}

package push

import (
	"encoding/json"
	"testing"

	"campus-portal-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotificationPayload(t *testing.T) {
	n := models.Notification{
		ID:      "n1",
		Title:   "🔴 Lost Item: Wallet",
		Message: "Brown leather...",
		Link:    "/lost-found/l1",
		Ref:     models.Ref{Kind: models.KindLostFound, ID: "l1"},
	}

	note := newNotification("edu.campus.portal", "device", n)
	assert.Equal(t, "device", note.DeviceToken)
	assert.Equal(t, "edu.campus.portal", note.Topic)
	assert.Equal(t, "l1", note.CollapseID)

	raw, err := json.Marshal(note.Payload)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "/lost-found/l1", body["link"])
	aps := body["aps"].(map[string]any)
	alert := aps["alert"].(map[string]any)
	assert.Equal(t, "🔴 Lost Item: Wallet", alert["title"])
	assert.Equal(t, "Brown leather...", alert["body"])
}

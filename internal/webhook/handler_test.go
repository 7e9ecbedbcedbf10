package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"atendechat/internal/appstate"
	"atendechat/internal/database"
	"atendechat/internal/models"
	"atendechat/internal/whatsapp"
	wire "atendechat/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named in-memory database so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, *appstate.Provider, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := whatsapp.NewService(nil, whatsapp.NewRegistry())
	provider := appstate.NewProvider(svc, nil)
	db := newTestDB(t)

	h := NewHandler(svc, provider, db)
	r := gin.New()
	r.POST("/webhook/evolution", h.HandleEvent)
	return r, provider, db
}

func postEvent(t *testing.T, r *gin.Engine, event wire.WebhookEvent) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/evolution", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func inboundEvent(id, text string) wire.WebhookEvent {
	return wire.WebhookEvent{
		Instance: "sales",
		Data: wire.WebhookData{
			Key:              wire.MessageKey{RemoteJid: "5511999999999@s.whatsapp.net", ID: id},
			Message:          &wire.MessageContent{Conversation: text},
			MessageTimestamp: 1700000000,
			MessageType:      "conversation",
			PushName:         "Maria",
		},
	}
}

func TestHandleEventPersistsInboundMessage(t *testing.T) {
	r, provider, db := newTestRouter(t)

	w := postEvent(t, r, inboundEvent("M1", "preciso de ajuda"))
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.StoredMessage
	require.NoError(t, db.Where("message_id = ?", "M1").First(&stored).Error)
	assert.Equal(t, "sales", stored.InstanceName)
	assert.Equal(t, "preciso de ajuda", stored.Content)
	assert.Equal(t, "delivered", stored.Status)
	assert.False(t, stored.FromMe)

	msgs := provider.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "M1", msgs[0].ID)
}

func TestHandleEventRegistersClient(t *testing.T) {
	r, _, db := newTestRouter(t)

	postEvent(t, r, inboundEvent("M1", "oi"))

	var client models.Client
	require.NoError(t, db.Where("phone = ?", "5511999999999").First(&client).Error)
	assert.Equal(t, "Maria", client.Name)
	assert.Equal(t, "whatsapp", client.Source)
	assert.NotNil(t, client.LastInteraction)
}

func TestHandleEventDuplicateDelivery(t *testing.T) {
	r, provider, db := newTestRouter(t)

	postEvent(t, r, inboundEvent("M1", "oi"))
	postEvent(t, r, inboundEvent("M1", "oi"))

	var count int64
	require.NoError(t, db.Model(&models.StoredMessage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, provider.Messages(), 1)
}

func TestHandleEventWithoutMessageBody(t *testing.T) {
	r, provider, db := newTestRouter(t)

	w := postEvent(t, r, wire.WebhookEvent{
		Instance: "sales",
		Data: wire.WebhookData{
			Key: wire.MessageKey{RemoteJid: "5511999999999@s.whatsapp.net", ID: "M1"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.StoredMessage{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, provider.Messages())
}

func TestHandleEventMalformedBody(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/evolution", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEventForwardsToActiveIntegrations(t *testing.T) {
	var forwarded []whatsapp.Message
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var msg whatsapp.Message
		require.NoError(t, json.NewDecoder(req.Body).Decode(&msg))
		forwarded = append(forwarded, msg)
	}))
	defer target.Close()

	r, _, db := newTestRouter(t)
	require.NoError(t, db.Create(&models.WebhookConfig{Name: "n8n", URL: target.URL, Status: "active"}).Error)
	require.NoError(t, db.Create(&models.WebhookConfig{Name: "paused", URL: target.URL, Status: "paused"}).Error)

	postEvent(t, r, inboundEvent("M1", "oi"))

	require.Len(t, forwarded, 1, "only active configs receive the message")
	assert.Equal(t, "M1", forwarded[0].ID)

	var cfg models.WebhookConfig
	require.NoError(t, db.Where("name = ?", "n8n").First(&cfg).Error)
	assert.NotNil(t, cfg.LastTriggered)

	cfg = models.WebhookConfig{}
	require.NoError(t, db.Where("name = ?", "paused").First(&cfg).Error)
	assert.Nil(t, cfg.LastTriggered)
}

func TestHandleEventBumpsTicketCounter(t *testing.T) {
	r, _, db := newTestRouter(t)

	open := models.Ticket{Number: "TK-001", Phone: "5511999999999", Status: "open", Messages: 2}
	finished := models.Ticket{Number: "TK-002", Phone: "5511999999999", Status: "finished", Messages: 5}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&finished).Error)

	postEvent(t, r, inboundEvent("M1", "oi"))

	var reloaded models.Ticket
	require.NoError(t, db.First(&reloaded, open.ID).Error)
	assert.Equal(t, 3, reloaded.Messages)

	reloaded = models.Ticket{}
	require.NoError(t, db.First(&reloaded, finished.ID).Error)
	assert.Equal(t, 5, reloaded.Messages, "finished tickets stay untouched")
}

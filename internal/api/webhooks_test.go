package api

import (
	"net/http"
	"testing"

	"atendechat/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	h := NewWebhookConfigHandler(db)

	r := gin.New()
	r.GET("/webhooks", h.GetWebhooks)
	r.POST("/webhooks", h.CreateWebhook)
	r.PUT("/webhooks/:id", h.UpdateWebhook)
	r.DELETE("/webhooks/:id", h.DeleteWebhook)
	return r, db
}

func TestCreateWebhookConfig(t *testing.T) {
	r, _ := newWebhookRouter(t)

	w := doJSON(t, r, http.MethodPost, "/webhooks", gin.H{
		"name": "n8n chat AI",
		"url":  "https://n8n.example.com/webhook/chat",
		"type": "chat_ai",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var webhook models.WebhookConfig
	decodeBody(t, w, &webhook)
	assert.Equal(t, "active", webhook.Status)
	assert.Equal(t, "chat_ai", webhook.Type)
}

func TestCreateWebhookConfigMissingURL(t *testing.T) {
	r, _ := newWebhookRouter(t)

	w := doJSON(t, r, http.MethodPost, "/webhooks", gin.H{"name": "n8n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWebhookConfigStatus(t *testing.T) {
	r, db := newWebhookRouter(t)

	require.NoError(t, db.Create(&models.WebhookConfig{Name: "n8n", URL: "https://n8n.example.com", Status: "active"}).Error)

	w := doJSON(t, r, http.MethodPut, "/webhooks/1", gin.H{"status": "paused"})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.WebhookConfig
	require.NoError(t, db.First(&reloaded, 1).Error)
	assert.Equal(t, "paused", reloaded.Status)
}

func TestDeleteWebhookConfigNotFound(t *testing.T) {
	r, _ := newWebhookRouter(t)

	w := doJSON(t, r, http.MethodDelete, "/webhooks/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package api

import (
	"errors"
	"net/http"

	"atendechat/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebhookConfigHandler manages the dashboard's outbound webhook
// registrations (n8n and similar integrations), not the Evolution inbound
// webhook.
type WebhookConfigHandler struct {
	DB *gorm.DB
}

func NewWebhookConfigHandler(db *gorm.DB) *WebhookConfigHandler {
	return &WebhookConfigHandler{DB: db}
}

func (h *WebhookConfigHandler) GetWebhooks(c *gin.Context) {
	var webhooks []models.WebhookConfig
	if err := h.DB.Order("created_at DESC").Find(&webhooks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if webhooks == nil {
		webhooks = []models.WebhookConfig{}
	}
	c.JSON(http.StatusOK, webhooks)
}

type CreateWebhookRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
	Type string `json:"type"`
}

func (h *WebhookConfigHandler) CreateWebhook(c *gin.Context) {
	var req CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	webhook := models.WebhookConfig{
		Name:   req.Name,
		URL:    req.URL,
		Type:   req.Type,
		Status: "active",
	}
	if err := h.DB.Create(&webhook).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create webhook"})
		return
	}
	c.JSON(http.StatusCreated, webhook)
}

type UpdateWebhookRequest struct {
	Name   *string `json:"name"`
	URL    *string `json:"url"`
	Type   *string `json:"type"`
	Status *string `json:"status"`
}

func (h *WebhookConfigHandler) UpdateWebhook(c *gin.Context) {
	var req UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var webhook models.WebhookConfig
	if err := h.DB.First(&webhook, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if err := h.DB.Model(&webhook).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update webhook"})
		return
	}
	c.JSON(http.StatusOK, webhook)
}

func (h *WebhookConfigHandler) DeleteWebhook(c *gin.Context) {
	result := h.DB.Delete(&models.WebhookConfig{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete webhook"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Webhook deleted"})
}

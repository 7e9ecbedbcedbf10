package webhook

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"atendechat/internal/appstate"
	"atendechat/internal/models"
	"atendechat/internal/whatsapp"
	wire "atendechat/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler receives Evolution API webhook events, persists the extracted
// messages and feeds them into the dashboard state.
type Handler struct {
	Service    *whatsapp.Service
	Provider   *appstate.Provider
	DB         *gorm.DB
	HTTPClient *http.Client
}

func NewHandler(service *whatsapp.Service, provider *appstate.Provider, db *gorm.DB) *Handler {
	return &Handler{
		Service:    service,
		Provider:   provider,
		DB:         db,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HandleEvent processes one gateway event. Events without an extractable
// message (presence, connection updates) are acknowledged and dropped.
func (h *Handler) HandleEvent(c *gin.Context) {
	var event wire.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Printf("Error binding webhook event: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	msg := h.Service.ProcessWebhookEvent(event)
	if msg == nil {
		c.Status(http.StatusOK)
		return
	}

	if h.Provider.AddMessage(*msg) {
		h.persistMessage(*msg, event.Data.PushName)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) persistMessage(msg whatsapp.Message, pushName string) {
	stored := models.StoredMessage{
		MessageID:    msg.ID,
		InstanceName: msg.InstanceName,
		RemoteJid:    msg.RemoteJid,
		FromMe:       msg.FromMe,
		MessageType:  msg.MessageType,
		Content:      msg.Content,
		Status:       msg.Status,
		MediaURL:     msg.MediaURL,
		FileName:     msg.FileName,
		Timestamp:    msg.Timestamp,
	}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).Create(&stored).Error; err != nil {
		log.Printf("Error storing message %s: %v", msg.ID, err)
	}

	// Inbound messages register the counterparty as a client and are
	// forwarded to the active integrations.
	if !msg.FromMe {
		h.upsertClient(msg.RemoteJid, pushName)
		h.notifyIntegrations(msg)
	}

	// Keep the open ticket's message counter in sync, if one exists.
	phone := phoneFromJid(msg.RemoteJid)
	if err := h.DB.Model(&models.Ticket{}).
		Where("phone = ? AND status <> ?", phone, "finished").
		UpdateColumn("messages", gorm.Expr("messages + 1")).Error; err != nil {
		log.Printf("Error bumping ticket counter for %s: %v", phone, err)
	}
}

func (h *Handler) upsertClient(remoteJid, pushName string) {
	now := time.Now()
	client := models.Client{
		Name:            pushName,
		Phone:           phoneFromJid(remoteJid),
		Status:          "active",
		Source:          "whatsapp",
		LastInteraction: &now,
	}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_interaction"}),
	}).Create(&client).Error; err != nil {
		log.Printf("Error upserting client %s: %v", client.Phone, err)
	}
}

// notifyIntegrations forwards an inbound message to every active registered
// webhook (n8n flows and similar) and records the delivery time.
func (h *Handler) notifyIntegrations(msg whatsapp.Message) {
	var configs []models.WebhookConfig
	if err := h.DB.Where("status = ?", "active").Find(&configs).Error; err != nil {
		log.Printf("Error loading webhook configs: %v", err)
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message %s for integrations: %v", msg.ID, err)
		return
	}

	for _, cfg := range configs {
		resp, err := h.HTTPClient.Post(cfg.URL, "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Printf("Error forwarding message to webhook %s: %v", cfg.Name, err)
			continue
		}
		resp.Body.Close()

		now := time.Now()
		if err := h.DB.Model(&models.WebhookConfig{}).
			Where("id = ?", cfg.ID).
			Update("last_triggered", &now).Error; err != nil {
			log.Printf("Error updating last_triggered for webhook %s: %v", cfg.Name, err)
		}
	}
}

func phoneFromJid(jid string) string {
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}

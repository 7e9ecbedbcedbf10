package api

import (
	"net/http"
	"strconv"

	"atendechat/internal/appstate"
	"atendechat/internal/models"
	"atendechat/internal/whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MessageHandler struct {
	Provider *appstate.Provider
	Service  *whatsapp.Service
	DB       *gorm.DB
}

func NewMessageHandler(provider *appstate.Provider, service *whatsapp.Service, db *gorm.DB) *MessageHandler {
	return &MessageHandler{Provider: provider, Service: service, DB: db}
}

// GetMessages lists persisted messages, newest first.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	var messages []models.StoredMessage
	if err := h.DB.Order("timestamp DESC").Limit(200).Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if messages == nil {
		messages = []models.StoredMessage{}
	}
	c.JSON(http.StatusOK, messages)
}

// GetLiveMessages returns the in-memory accumulation for the current session.
func (h *MessageHandler) GetLiveMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.Provider.Messages())
}

func (h *MessageHandler) SendTextMessage(c *gin.Context) {
	var req whatsapp.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Provider.SendTextMessage(req)
	if err != nil {
		serviceError(c, err)
		return
	}
	h.persist(msg)
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) SendMediaMessage(c *gin.Context) {
	var req whatsapp.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Provider.SendMediaMessage(req)
	if err != nil {
		serviceError(c, err)
		return
	}
	h.persist(msg)
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) persist(msg whatsapp.Message) {
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
	// Fire and forget; the send already succeeded at the gateway.
	h.DB.Create(&stored)
}

func (h *MessageHandler) GetChats(c *gin.Context) {
	chats, err := h.Provider.LoadChats(c.Param("name"))
	if err != nil {
		serviceError(c, err)
		return
	}
	if chats == nil {
		chats = []whatsapp.Chat{}
	}
	c.JSON(http.StatusOK, chats)
}

func (h *MessageHandler) GetContacts(c *gin.Context) {
	contacts, err := h.Service.GetContacts(c.Param("name"))
	if err != nil {
		serviceError(c, err)
		return
	}
	if contacts == nil {
		contacts = []whatsapp.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

// GetChatMessages reads through to the gateway; limit defaults to 20 and the
// gateway exposes no cursor beyond it.
func (h *MessageHandler) GetChatMessages(c *gin.Context) {
	remoteJid := c.Query("remote_jid")
	if remoteJid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remote_jid query parameter is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	messages, err := h.Service.GetChatMessages(c.Param("name"), remoteJid, limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	if messages == nil {
		messages = []whatsapp.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

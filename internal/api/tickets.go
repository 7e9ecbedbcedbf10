package api

import (
	"errors"
	"net/http"
	"time"

	"atendechat/internal/appstate"
	"atendechat/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TicketHandler struct {
	DB   *gorm.DB
	Sink appstate.EventSink
}

func NewTicketHandler(db *gorm.DB, sink appstate.EventSink) *TicketHandler {
	return &TicketHandler{DB: db, Sink: sink}
}

func (h *TicketHandler) notify(eventType string, data interface{}) {
	if h.Sink != nil {
		h.Sink.BroadcastEvent(eventType, data)
	}
}

func (h *TicketHandler) GetTickets(c *gin.Context) {
	query := h.DB.Order("updated_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if agent := c.Query("agent"); agent != "" {
		query = query.Where("agent = ?", agent)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	var ticket models.Ticket
	if err := h.DB.First(&ticket, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type CreateTicketRequest struct {
	Number     string `json:"number" binding:"required"`
	ClientName string `json:"client_name"`
	Phone      string `json:"phone" binding:"required"`
	Subject    string `json:"subject"`
	Priority   string `json:"priority"`
	Agent      string `json:"agent"`
	Tags       string `json:"tags"`
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	ticket := models.Ticket{
		Number:     req.Number,
		ClientName: req.ClientName,
		Phone:      req.Phone,
		Subject:    req.Subject,
		Status:     "open",
		Priority:   priority,
		Agent:      req.Agent,
		Tags:       req.Tags,
	}
	if err := h.DB.Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}
	h.notify("ticket_update", ticket)
	c.JSON(http.StatusCreated, ticket)
}

type UpdateTicketRequest struct {
	Subject  *string `json:"subject"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Agent    *string `json:"agent"`
	Tags     *string `json:"tags"`
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ticket models.Ticket
	if err := h.DB.First(&ticket, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == "finished" {
			now := time.Now()
			updates["closed_at"] = &now
		}
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Agent != nil {
		updates["agent"] = *req.Agent
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if err := h.DB.Model(&ticket).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}
	h.notify("ticket_update", ticket)
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	result := h.DB.Delete(&models.Ticket{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ticket"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}
	h.notify("ticket_deleted", gin.H{"id": c.Param("id")})
	c.JSON(http.StatusOK, gin.H{"status": "Ticket deleted"})
}

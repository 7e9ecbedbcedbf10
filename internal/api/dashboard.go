package api

import (
	"net/http"
	"time"

	"atendechat/internal/models"
	"atendechat/internal/whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB      *gorm.DB
	Service *whatsapp.Service
}

func NewDashboardHandler(db *gorm.DB, service *whatsapp.Service) *DashboardHandler {
	return &DashboardHandler{DB: db, Service: service}
}

// GetMetrics aggregates the figures the dashboard cards render.
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	ticketsByStatus := map[string]int64{}
	for _, status := range []string{"open", "waiting", "progress", "finished"} {
		var count int64
		h.DB.Model(&models.Ticket{}).Where("status = ?", status).Count(&count)
		ticketsByStatus[status] = count
	}

	var totalClients, activeClients int64
	h.DB.Model(&models.Client{}).Count(&totalClients)
	h.DB.Model(&models.Client{}).Where("status = ?", "active").Count(&activeClients)

	var totalMessages, messagesToday int64
	h.DB.Model(&models.StoredMessage{}).Count(&totalMessages)
	startOfDay := time.Now().Truncate(24 * time.Hour).UnixMilli()
	h.DB.Model(&models.StoredMessage{}).Where("timestamp >= ?", startOfDay).Count(&messagesToday)

	connected := 0
	instances := h.Service.ListInstances()
	for _, inst := range instances {
		if inst.Status == whatsapp.StatusConnected {
			connected++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets_by_status":   ticketsByStatus,
		"total_clients":       totalClients,
		"active_clients":      activeClients,
		"total_messages":      totalMessages,
		"messages_today":      messagesToday,
		"instances":           len(instances),
		"connected_instances": connected,
	})
}

// GetReport returns daily message volume for the reports page.
func (h *DashboardHandler) GetReport(c *gin.Context) {
	days := 7
	now := time.Now()
	type dayVolume struct {
		Date     string `json:"date"`
		Sent     int64  `json:"sent"`
		Received int64  `json:"received"`
	}

	report := make([]dayVolume, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		from := day.UnixMilli()
		to := day.Add(24 * time.Hour).UnixMilli()

		var sent, received int64
		h.DB.Model(&models.StoredMessage{}).
			Where("timestamp >= ? AND timestamp < ? AND from_me = ?", from, to, true).Count(&sent)
		h.DB.Model(&models.StoredMessage{}).
			Where("timestamp >= ? AND timestamp < ? AND from_me = ?", from, to, false).Count(&received)

		report = append(report, dayVolume{
			Date:     day.Format("2006-01-02"),
			Sent:     sent,
			Received: received,
		})
	}

	c.JSON(http.StatusOK, report)
}

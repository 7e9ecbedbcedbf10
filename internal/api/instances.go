package api

import (
	"errors"
	"net/http"

	"atendechat/internal/appstate"
	"atendechat/internal/evolution"
	"atendechat/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

type InstanceHandler struct {
	Provider *appstate.Provider
	Service  *whatsapp.Service
}

func NewInstanceHandler(provider *appstate.Provider, service *whatsapp.Service) *InstanceHandler {
	return &InstanceHandler{Provider: provider, Service: service}
}

// serviceError maps the whatsapp error taxonomy onto HTTP status codes.
func serviceError(c *gin.Context, err error) {
	var validationErr *whatsapp.ValidationError
	var apiErr *evolution.APIError
	switch {
	case errors.Is(err, whatsapp.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, whatsapp.ErrInstanceNotConnected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, whatsapp.ErrInstanceExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *InstanceHandler) ListInstances(c *gin.Context) {
	instances := h.Provider.Instances()
	if instances == nil {
		instances = []whatsapp.Instance{}
	}
	c.JSON(http.StatusOK, instances)
}

type CreateInstanceRequest struct {
	Name       string `json:"name" binding:"required"`
	Qrcode     *bool  `json:"qrcode"`
	WebhookURL string `json:"webhook_url"`
}

func (h *InstanceHandler) CreateInstance(c *gin.Context) {
	var req CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enableQR := true
	if req.Qrcode != nil {
		enableQR = *req.Qrcode
	}

	inst, err := h.Provider.CreateInstance(req.Name, enableQR, req.WebhookURL)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inst)
}

func (h *InstanceHandler) DeleteInstance(c *gin.Context) {
	if err := h.Provider.DeleteInstance(c.Param("name")); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Instance deleted"})
}

func (h *InstanceHandler) ConnectInstance(c *gin.Context) {
	qr, err := h.Provider.ConnectInstance(c.Param("name"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connecting", "qr_code": qr})
}

func (h *InstanceHandler) LogoutInstance(c *gin.Context) {
	if err := h.Provider.LogoutInstance(c.Param("name")); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Instance logged out"})
}

func (h *InstanceHandler) RestartInstance(c *gin.Context) {
	if err := h.Service.RestartInstance(c.Param("name")); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Instance restarting"})
}

// GetConnectionState polls the gateway and returns the reconciled status.
func (h *InstanceHandler) GetConnectionState(c *gin.Context) {
	status, err := h.Service.CheckConnectionState(c.Param("name"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": c.Param("name"), "status": status})
}

type SetWebhookRequest struct {
	URL    string   `json:"url" binding:"required"`
	Events []string `json:"events"`
}

func (h *InstanceHandler) SetWebhook(c *gin.Context) {
	var req SetWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.SetWebhook(c.Param("name"), req.URL, req.Events); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Webhook configured"})
}

func (h *InstanceHandler) FindWebhook(c *gin.Context) {
	settings, err := h.Service.FindWebhook(c.Param("name"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *InstanceHandler) GetActiveInstance(c *gin.Context) {
	inst, ok := h.Provider.ActiveInstance()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active instance"})
		return
	}
	c.JSON(http.StatusOK, inst)
}

type SetActiveInstanceRequest struct {
	Name string `json:"name"`
}

func (h *InstanceHandler) SetActiveInstance(c *gin.Context) {
	var req SetActiveInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Provider.SetActiveInstance(req.Name); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Active instance updated"})
}

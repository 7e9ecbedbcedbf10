package main

import (
	"log"

	"atendechat/internal/api"
	"atendechat/internal/appstate"
	"atendechat/internal/config"
	"atendechat/internal/database"
	"atendechat/internal/evolution"
	"atendechat/internal/webhook"
	"atendechat/internal/whatsapp"
	"atendechat/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	hub := ws.NewHub()
	go hub.Run()

	gateway := evolution.NewClient(cfg.EvolutionBaseURL, cfg.EvolutionAPIKey)
	registry := whatsapp.NewRegistry()
	service := whatsapp.NewService(gateway, registry)
	provider := appstate.NewProvider(service, hub)
	provider.Init()

	poller := whatsapp.NewStatusPoller(service, cfg.PollSpec)
	if err := poller.Start(); err != nil {
		log.Fatalf("Failed to start status poller: %v", err)
	}
	defer poller.Stop()

	webhookHandler := webhook.NewHandler(service, provider, db)
	instanceHandler := api.NewInstanceHandler(provider, service)
	messageHandler := api.NewMessageHandler(provider, service, db)
	ticketHandler := api.NewTicketHandler(db, hub)
	clientHandler := api.NewClientHandler(db)
	tagHandler := api.NewTagHandler(db)
	userHandler := api.NewUserHandler(db)
	webhookConfigHandler := api.NewWebhookConfigHandler(db)
	dashboardHandler := api.NewDashboardHandler(db, service)

	// Evolution API events (webhookByEvents appends the event name)
	r.POST("/webhook/evolution", webhookHandler.HandleEvent)
	r.POST("/webhook/evolution/*event", webhookHandler.HandleEvent)

	// Live dashboard updates
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := r.Group("/api")
	{
		// Instance Routes
		apiGroup.GET("/instances", instanceHandler.ListInstances)
		apiGroup.POST("/instances", instanceHandler.CreateInstance)
		apiGroup.GET("/active-instance", instanceHandler.GetActiveInstance)
		apiGroup.POST("/active-instance", instanceHandler.SetActiveInstance)
		apiGroup.DELETE("/instances/:name", instanceHandler.DeleteInstance)
		apiGroup.POST("/instances/:name/connect", instanceHandler.ConnectInstance)
		apiGroup.POST("/instances/:name/logout", instanceHandler.LogoutInstance)
		apiGroup.POST("/instances/:name/restart", instanceHandler.RestartInstance)
		apiGroup.GET("/instances/:name/status", instanceHandler.GetConnectionState)
		apiGroup.POST("/instances/:name/webhook", instanceHandler.SetWebhook)
		apiGroup.GET("/instances/:name/webhook", instanceHandler.FindWebhook)

		// Message Routes
		apiGroup.GET("/messages", messageHandler.GetMessages)
		apiGroup.GET("/messages/live", messageHandler.GetLiveMessages)
		apiGroup.POST("/messages/text", messageHandler.SendTextMessage)
		apiGroup.POST("/messages/media", messageHandler.SendMediaMessage)

		// Chat Routes
		apiGroup.GET("/chats/:name", messageHandler.GetChats)
		apiGroup.GET("/chats/:name/messages", messageHandler.GetChatMessages)
		apiGroup.GET("/contacts/:name", messageHandler.GetContacts)

		// CRM Routes
		apiGroup.GET("/tickets", ticketHandler.GetTickets)
		apiGroup.POST("/tickets", ticketHandler.CreateTicket)
		apiGroup.GET("/tickets/:id", ticketHandler.GetTicket)
		apiGroup.PUT("/tickets/:id", ticketHandler.UpdateTicket)
		apiGroup.DELETE("/tickets/:id", ticketHandler.DeleteTicket)

		apiGroup.GET("/clients", clientHandler.GetClients)
		apiGroup.POST("/clients", clientHandler.CreateClient)
		apiGroup.PUT("/clients/:id", clientHandler.UpdateClient)
		apiGroup.DELETE("/clients/:id", clientHandler.DeleteClient)
		apiGroup.GET("/clients/export", clientHandler.ExportClients)

		apiGroup.GET("/tags", tagHandler.GetTags)
		apiGroup.POST("/tags", tagHandler.CreateTag)
		apiGroup.PUT("/tags/:id", tagHandler.UpdateTag)
		apiGroup.DELETE("/tags/:id", tagHandler.DeleteTag)

		apiGroup.GET("/users", userHandler.GetUsers)
		apiGroup.POST("/users", userHandler.CreateUser)
		apiGroup.PUT("/users/:id", userHandler.UpdateUser)
		apiGroup.DELETE("/users/:id", userHandler.DeleteUser)
		apiGroup.POST("/users/:id/login", userHandler.TouchLogin)

		apiGroup.GET("/webhooks", webhookConfigHandler.GetWebhooks)
		apiGroup.POST("/webhooks", webhookConfigHandler.CreateWebhook)
		apiGroup.PUT("/webhooks/:id", webhookConfigHandler.UpdateWebhook)
		apiGroup.DELETE("/webhooks/:id", webhookConfigHandler.DeleteWebhook)

		// Dashboard Routes
		apiGroup.GET("/dashboard/metrics", dashboardHandler.GetMetrics)
		apiGroup.GET("/dashboard/report", dashboardHandler.GetReport)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

package main

import (
	"log"

	"atendechat/internal/config"
	"atendechat/internal/database"
	"atendechat/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// One-shot migration of a local sqlite development database into PostgreSQL.
// Run with DB_DRIVER=postgres so InitGorm opens the destination.
func main() {
	cfg := config.LoadConfig()

	// 1. Connect to SQLite (Source)
	sqliteDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	log.Printf("Connected to SQLite at %s", cfg.DBPath)

	// 2. Connect to PostgreSQL (Destination)
	cfg.DBDriver = "postgres"
	database.InitGorm(cfg)
	pgDB := database.GormDB

	log.Println("Starting data migration...")

	migrateTable := func(tableName string, source interface{}) {
		log.Printf("Migrating table: %s", tableName)

		if err := sqliteDB.Find(source).Error; err != nil {
			log.Printf("Error reading %s from SQLite: %v", tableName, err)
			return
		}

		err := pgDB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(source).Error
		})
		if err != nil {
			log.Printf("Error writing %s to Postgres: %v", tableName, err)
		} else {
			log.Printf("Successfully migrated %s", tableName)
		}
	}

	var tickets []models.Ticket
	migrateTable("tickets", &tickets)

	var clients []models.Client
	migrateTable("clients", &clients)

	var tags []models.Tag
	migrateTable("tags", &tags)

	var users []models.User
	migrateTable("users", &users)

	var webhooks []models.WebhookConfig
	migrateTable("webhook_configs", &webhooks)

	var messages []models.StoredMessage
	migrateTable("messages", &messages)

	log.Println("Migration completed!")
}

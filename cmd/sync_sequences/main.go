package main

import (
	"log"

	"atendechat/internal/config"
	"atendechat/internal/database"
)

// Realigns PostgreSQL serial sequences after a bulk import with explicit ids
// (see cmd/migrate_data).
func main() {
	cfg := config.LoadConfig()
	cfg.DBDriver = "postgres"
	database.InitGorm(cfg)
	db := database.GormDB

	tables := []string{
		"tickets",
		"clients",
		"tags",
		"users",
		"webhook_configs",
		"messages",
	}

	log.Println("Syncing PostgreSQL sequences...")

	for _, table := range tables {
		query := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), coalesce(max(id), 0) + 1, false) FROM " + table
		if err := db.Exec(query).Error; err != nil {
			log.Printf("Error syncing sequence for %s: %v", table, err)
		} else {
			log.Printf("Successfully synced sequence for %s", table)
		}
	}

	log.Println("DONE!")
}

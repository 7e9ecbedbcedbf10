package models

import (
	"time"
)

// Ticket represents a customer-service ticket shown on the dashboard kanban.
type Ticket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Number     string     `gorm:"type:varchar(20);uniqueIndex" json:"number"`
	ClientName string     `gorm:"type:varchar(255)" json:"client_name"`
	Phone      string     `gorm:"type:varchar(50);index" json:"phone"`
	Subject    string     `gorm:"type:varchar(255)" json:"subject"`
	Status     string     `gorm:"type:varchar(20);default:'open';index" json:"status"` // open, waiting, progress, finished
	Priority   string     `gorm:"type:varchar(20);default:'medium'" json:"priority"`   // low, medium, high
	Agent      string     `gorm:"type:varchar(255)" json:"agent"`
	Tags       string     `gorm:"type:text" json:"tags"` // comma separated tag names
	Messages   int        `gorm:"default:0" json:"messages"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// Client represents a CRM client record
type Client struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"type:varchar(255)" json:"name"`
	Email           string     `gorm:"type:varchar(255)" json:"email"`
	Phone           string     `gorm:"type:varchar(50);uniqueIndex" json:"phone"`
	Status          string     `gorm:"type:varchar(20);default:'pending'" json:"status"` // active, pending, inactive
	Source          string     `gorm:"type:varchar(20)" json:"source"`                   // whatsapp, facebook, website
	LastInteraction *time.Time `json:"last_interaction"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Tag represents a ticket label; kanban tags show up as board columns
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"type:varchar(7)" json:"color"` // hex, e.g. #DC2626
	Kanban    bool      `gorm:"default:false" json:"kanban"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// User represents a dashboard operator account
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role       string     `gorm:"type:varchar(20);default:'agent'" json:"role"` // admin, supervisor, agent
	Status     string     `gorm:"type:varchar(20);default:'active'" json:"status"`
	Department string     `gorm:"type:varchar(100)" json:"department"`
	Phone      string     `gorm:"type:varchar(50)" json:"phone"`
	LastLogin  *time.Time `json:"last_login"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// WebhookConfig represents an outbound webhook registration managed from the
// dashboard (e.g. n8n integrations)
type WebhookConfig struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	URL           string     `gorm:"type:text;not null" json:"url"`
	Type          string     `gorm:"type:varchar(50)" json:"type"` // chat_ai, user_registration, ...
	Status        string     `gorm:"type:varchar(20);default:'active'" json:"status"`
	LastTriggered *time.Time `json:"last_triggered"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (WebhookConfig) TableName() string {
	return "webhook_configs"
}

// StoredMessage is the persisted copy of a WhatsApp message, keyed by the
// gateway-assigned message id so duplicate webhook deliveries collapse.
type StoredMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MessageID    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"message_id"`
	InstanceName string    `gorm:"type:varchar(100);index" json:"instance_name"`
	RemoteJid    string    `gorm:"type:varchar(100);index" json:"remote_jid"`
	FromMe       bool      `json:"from_me"`
	MessageType  string    `gorm:"type:varchar(20)" json:"message_type"` // text, image, video, audio, document, sticker
	Content      string    `gorm:"type:text" json:"content"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, delivered, read, error
	MediaURL     string    `gorm:"type:text" json:"media_url"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	Timestamp    int64     `gorm:"index" json:"timestamp"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StoredMessage) TableName() string {
	return "messages"
}

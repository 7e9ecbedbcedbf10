package whatsapp

import (
	"time"
)

// Status mirrors, with latency, the remote session state of an instance.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusQRCode       Status = "qr_code"
)

// Instance is the local record of one named WhatsApp connection. Name is
// caller-assigned and immutable; ExternalID and APIKey come from the gateway
// on creation. Revision increases on every local mutation so a stale poll
// response can be detected and discarded.
type Instance struct {
	Name       string    `json:"instance_name"`
	ExternalID string    `json:"instance_id"`
	APIKey     string    `json:"-"`
	Status     Status    `json:"status"`
	QRCode     string    `json:"qr_code,omitempty"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	LastUpdate time.Time `json:"last_update"`
	Revision   uint64    `json:"-"`
}

// Message is a single sent or received communication unit. Created locally on
// send (optimistic, status sent) or materialized from a gateway event.
type Message struct {
	ID           string `json:"id"`
	InstanceName string `json:"instance_name"`
	RemoteJid    string `json:"remote_jid"`
	FromMe       bool   `json:"from_me"`
	MessageType  string `json:"message_type"` // text, image, video, audio, document, sticker
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
	Status       string `json:"status"` // sent, delivered, read, error
	MediaURL     string `json:"media_url,omitempty"`
	FileName     string `json:"file_name,omitempty"`
}

// Chat is a counterparty conversation summary, replaced wholesale per fetch.
type Chat struct {
	ID           string `json:"id"`
	InstanceName string `json:"instance_name"`
	RemoteJid    string `json:"remote_jid"`
	Name         string `json:"name,omitempty"`
	IsGroup      bool   `json:"is_group"`
	UnreadCount  int    `json:"unread_count"`
	Archived     bool   `json:"archived"`
	Pinned       bool   `json:"pinned"`
}

// Contact is a gateway-side address book entry.
type Contact struct {
	Jid           string `json:"jid"`
	Name          string `json:"name,omitempty"`
	PushName      string `json:"push_name,omitempty"`
	IsGroup       bool   `json:"is_group"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

// SendMessageRequest carries the caller input for text and media sends.
type SendMessageRequest struct {
	InstanceName string `json:"instance_name"`
	PhoneNumber  string `json:"phone_number"`
	Message      string `json:"message"`
	MediaURL     string `json:"media_url,omitempty"`
	MediaType    string `json:"media_type,omitempty"` // image, video, audio, document
	Caption      string `json:"caption,omitempty"`
	FileName     string `json:"file_name,omitempty"`
}

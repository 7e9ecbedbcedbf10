package evolution

import (
	"atendechat/pkg/models"
)

// --- Instance Management ---

type CreateInstanceRequest struct {
	InstanceName    string   `json:"instanceName"`
	Qrcode          bool     `json:"qrcode"`
	Integration     string   `json:"integration"`
	WebhookURL      string   `json:"webhookUrl,omitempty"`
	WebhookByEvents bool     `json:"webhookByEvents,omitempty"`
	WebhookBase64   bool     `json:"webhookBase64,omitempty"`
	Events          []string `json:"events,omitempty"`
}

type CreateInstanceResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		InstanceID   string `json:"instanceId"`
		Status       string `json:"status"`
	} `json:"instance"`
	Hash struct {
		APIKey string `json:"apikey"`
	} `json:"hash"`
	Qrcode *Qrcode `json:"qrcode,omitempty"`
}

type Qrcode struct {
	PairingCode string `json:"pairingCode,omitempty"`
	Code        string `json:"code,omitempty"`
	Base64      string `json:"base64,omitempty"`
}

// ConnectResponse carries the freshly generated pairing QR.
type ConnectResponse struct {
	PairingCode string `json:"pairingCode,omitempty"`
	Code        string `json:"code,omitempty"`
	Base64      string `json:"base64,omitempty"`
}

type ConnectionState struct {
	Instance string `json:"instance"`
	State    string `json:"state"` // close, connecting, open
}

type FetchedInstance struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		InstanceID   string `json:"instanceId"`
		Status       string `json:"status"`
	} `json:"instance"`
}

// --- Messaging ---

type MessageOptions struct {
	Delay    int    `json:"delay,omitempty"`
	Presence string `json:"presence,omitempty"` // unavailable, available, composing, recording, paused
}

type SendTextRequest struct {
	Number      string          `json:"number"`
	Options     *MessageOptions `json:"options,omitempty"`
	TextMessage TextMessage     `json:"textMessage"`
}

type TextMessage struct {
	Text string `json:"text"`
}

type SendMediaRequest struct {
	Number       string          `json:"number"`
	Options      *MessageOptions `json:"options,omitempty"`
	MediaMessage MediaMessage    `json:"mediaMessage"`
}

type MediaMessage struct {
	Mediatype string `json:"mediatype"` // image, video, audio, document
	Media     string `json:"media"`     // URL or base64
	Caption   string `json:"caption,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

type SendMessageResponse struct {
	Key              models.MessageKey `json:"key"`
	Status           string            `json:"status,omitempty"`
	MessageTimestamp int64             `json:"messageTimestamp,omitempty"`
}

// --- Webhook Management ---

type WebhookSettings struct {
	Webhook         string   `json:"webhook"`
	WebhookByEvents bool     `json:"webhookByEvents"`
	WebhookBase64   bool     `json:"webhookBase64"`
	Events          []string `json:"events"`
	Enabled         bool     `json:"enabled,omitempty"`
}

// --- Chat Queries ---

type ContactRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	PushName      string `json:"pushName,omitempty"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
}

type ChatRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	UnreadCount int    `json:"unreadCount,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
}

type MessageRecord struct {
	Key              models.MessageKey      `json:"key"`
	Message          *models.MessageContent `json:"message,omitempty"`
	MessageType      string                 `json:"messageType,omitempty"`
	MessageTimestamp int64                  `json:"messageTimestamp,omitempty"`
}

type findMessagesRequest struct {
	Where findMessagesWhere `json:"where"`
	Limit int               `json:"limit"`
}

type findMessagesWhere struct {
	Key findMessagesKey `json:"key"`
}

type findMessagesKey struct {
	RemoteJid string `json:"remoteJid"`
}

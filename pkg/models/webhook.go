package models

// Wire shapes for Evolution API webhook events. The gateway posts one event
// per delivery when webhookByEvents is enabled.

type WebhookEvent struct {
	Instance    string      `json:"instance"`
	Data        WebhookData `json:"data"`
	Destination string      `json:"destination"`
	DateTime    string      `json:"date_time"`
	Sender      string      `json:"sender"`
	ServerURL   string      `json:"server_url"`
	APIKey      string      `json:"apikey"`
}

type WebhookData struct {
	Key              MessageKey      `json:"key"`
	Message          *MessageContent `json:"message,omitempty"`
	MessageTimestamp int64           `json:"messageTimestamp"`
	MessageType      string          `json:"messageType"`
	PushName         string          `json:"pushName,omitempty"`
	Source           string          `json:"source"`
}

type MessageKey struct {
	RemoteJid string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// MessageContent mirrors the Baileys message envelope: exactly one of the
// branches is populated depending on the message type.
type MessageContent struct {
	Conversation        string           `json:"conversation,omitempty"`
	ExtendedTextMessage *ExtendedText    `json:"extendedTextMessage,omitempty"`
	ImageMessage        *MediaContent    `json:"imageMessage,omitempty"`
	VideoMessage        *MediaContent    `json:"videoMessage,omitempty"`
	AudioMessage        *MediaContent    `json:"audioMessage,omitempty"`
	DocumentMessage     *DocumentContent `json:"documentMessage,omitempty"`
	StickerMessage      *MediaContent    `json:"stickerMessage,omitempty"`
}

type ExtendedText struct {
	Text string `json:"text"`
}

type MediaContent struct {
	URL      string `json:"url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
}

type DocumentContent struct {
	URL      string `json:"url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
}

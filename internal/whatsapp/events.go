package whatsapp

import (
	"atendechat/pkg/models"
)

// ContentKind names the message envelope branch a body was decoded from.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentText
	ContentExtendedText
	ContentImageCaption
	ContentVideoCaption
	ContentDocumentCaption
	ContentUnsupported
)

// DecodeContent extracts the textual body from a message envelope. One
// explicit case per known shape; anything else is ContentUnsupported with an
// empty body.
func DecodeContent(msg *models.MessageContent) (ContentKind, string) {
	switch {
	case msg == nil:
		return ContentNone, ""
	case msg.Conversation != "":
		return ContentText, msg.Conversation
	case msg.ExtendedTextMessage != nil:
		return ContentExtendedText, msg.ExtendedTextMessage.Text
	case msg.ImageMessage != nil:
		return ContentImageCaption, msg.ImageMessage.Caption
	case msg.VideoMessage != nil:
		return ContentVideoCaption, msg.VideoMessage.Caption
	case msg.DocumentMessage != nil:
		return ContentDocumentCaption, msg.DocumentMessage.Caption
	default:
		return ContentUnsupported, ""
	}
}

// ProcessWebhookEvent materializes a Message from an inbound gateway event.
// Events without a message body (presence updates, connection updates) yield
// nil and the caller discards them.
func (s *Service) ProcessWebhookEvent(event models.WebhookEvent) *Message {
	if event.Data.Message == nil {
		return nil
	}

	_, content := DecodeContent(event.Data.Message)
	msgType := event.Data.MessageType
	if msgType == "" {
		msgType = "text"
	}

	return &Message{
		ID:           event.Data.Key.ID,
		InstanceName: event.Instance,
		RemoteJid:    event.Data.Key.RemoteJid,
		FromMe:       event.Data.Key.FromMe,
		MessageType:  msgType,
		Content:      content,
		Timestamp:    event.Data.MessageTimestamp,
		Status:       "delivered",
	}
}

package whatsapp

import (
	"testing"

	wire "atendechat/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name string
		msg  *wire.MessageContent
		kind ContentKind
		body string
	}{
		{"nil envelope", nil, ContentNone, ""},
		{"conversation", &wire.MessageContent{Conversation: "oi"}, ContentText, "oi"},
		{"extended text", &wire.MessageContent{ExtendedTextMessage: &wire.ExtendedText{Text: "link preview"}}, ContentExtendedText, "link preview"},
		{"image caption", &wire.MessageContent{ImageMessage: &wire.MediaContent{Caption: "foto"}}, ContentImageCaption, "foto"},
		{"video caption", &wire.MessageContent{VideoMessage: &wire.MediaContent{Caption: "clipe"}}, ContentVideoCaption, "clipe"},
		{"document caption", &wire.MessageContent{DocumentMessage: &wire.DocumentContent{Caption: "fatura", FileName: "fatura.pdf"}}, ContentDocumentCaption, "fatura"},
		{"sticker is unsupported", &wire.MessageContent{StickerMessage: &wire.MediaContent{Mimetype: "image/webp"}}, ContentUnsupported, ""},
		{"audio is unsupported", &wire.MessageContent{AudioMessage: &wire.MediaContent{Mimetype: "audio/ogg"}}, ContentUnsupported, ""},
		{"empty envelope", &wire.MessageContent{}, ContentUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, body := DecodeContent(tt.msg)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestProcessWebhookEventWithoutMessage(t *testing.T) {
	svc, _ := newTestService()

	msg := svc.ProcessWebhookEvent(wire.WebhookEvent{
		Instance: "sales",
		Data:     wire.WebhookData{Key: wireKey("M1")},
	})
	assert.Nil(t, msg, "events without a body are discarded")
}

func TestProcessWebhookEventInbound(t *testing.T) {
	svc, _ := newTestService()

	msg := svc.ProcessWebhookEvent(wire.WebhookEvent{
		Instance: "sales",
		Data: wire.WebhookData{
			Key:              wireKey("M1"),
			Message:          textContent("preciso de ajuda"),
			MessageTimestamp: 1700000000,
			MessageType:      "conversation",
			PushName:         "Maria",
		},
	})
	require.NotNil(t, msg)
	assert.Equal(t, "M1", msg.ID)
	assert.Equal(t, "sales", msg.InstanceName)
	assert.Equal(t, "5511999999999@s.whatsapp.net", msg.RemoteJid)
	assert.False(t, msg.FromMe)
	assert.Equal(t, "preciso de ajuda", msg.Content)
	assert.Equal(t, int64(1700000000), msg.Timestamp)
	assert.Equal(t, "delivered", msg.Status)
}

func TestProcessWebhookEventBodyShapes(t *testing.T) {
	svc, _ := newTestService()

	shapes := []struct {
		name string
		msg  *wire.MessageContent
		body string
	}{
		{"plain text", &wire.MessageContent{Conversation: "oi"}, "oi"},
		{"extended text", &wire.MessageContent{ExtendedTextMessage: &wire.ExtendedText{Text: "veja isto"}}, "veja isto"},
		{"captioned media", &wire.MessageContent{ImageMessage: &wire.MediaContent{Caption: "foto"}}, "foto"},
	}

	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			msg := svc.ProcessWebhookEvent(wire.WebhookEvent{
				Instance: "sales",
				Data:     wire.WebhookData{Key: wireKey("M-" + tt.name), Message: tt.msg},
			})
			require.NotNil(t, msg)
			assert.Equal(t, tt.body, msg.Content)
		})
	}
}

func TestProcessWebhookEventDefaultsMessageType(t *testing.T) {
	svc, _ := newTestService()

	msg := svc.ProcessWebhookEvent(wire.WebhookEvent{
		Instance: "sales",
		Data: wire.WebhookData{
			Key:     wireKey("M2"),
			Message: textContent("olá"),
		},
	})
	require.NotNil(t, msg)
	assert.Equal(t, "text", msg.MessageType)
}

func TestProcessWebhookEventUnsupportedContent(t *testing.T) {
	svc, _ := newTestService()

	msg := svc.ProcessWebhookEvent(wire.WebhookEvent{
		Instance: "sales",
		Data: wire.WebhookData{
			Key:         wireKey("M3"),
			Message:     &wire.MessageContent{StickerMessage: &wire.MediaContent{Mimetype: "image/webp"}},
			MessageType: "stickerMessage",
		},
	})
	require.NotNil(t, msg, "unsupported content still yields a message record")
	assert.Empty(t, msg.Content)
	assert.Equal(t, "stickerMessage", msg.MessageType)
}

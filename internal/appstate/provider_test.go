package appstate

import (
	"sync"
	"testing"

	"atendechat/internal/evolution"
	"atendechat/internal/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway answers every call successfully with minimal payloads.
type stubGateway struct {
	state string
	chats []evolution.ChatRecord
}

func (g *stubGateway) CreateInstance(req evolution.CreateInstanceRequest) (*evolution.CreateInstanceResponse, error) {
	resp := &evolution.CreateInstanceResponse{}
	resp.Instance.InstanceName = req.InstanceName
	resp.Hash.APIKey = "key-" + req.InstanceName
	if req.Qrcode {
		resp.Qrcode = &evolution.Qrcode{Base64: "data:image/png;base64,QR"}
	}
	return resp, nil
}

func (g *stubGateway) DeleteInstance(name, apiKey string) error  { return nil }
func (g *stubGateway) LogoutInstance(name, apiKey string) error  { return nil }
func (g *stubGateway) RestartInstance(name, apiKey string) error { return nil }

func (g *stubGateway) ConnectInstance(name, apiKey string) (*evolution.ConnectResponse, error) {
	return &evolution.ConnectResponse{Base64: "data:image/png;base64,QR"}, nil
}

func (g *stubGateway) GetConnectionState(name, apiKey string) (*evolution.ConnectionState, error) {
	return &evolution.ConnectionState{Instance: name, State: g.state}, nil
}

func (g *stubGateway) SendTextMessage(name, apiKey string, req evolution.SendTextRequest) (*evolution.SendMessageResponse, error) {
	return &evolution.SendMessageResponse{}, nil
}

func (g *stubGateway) SendMediaMessage(name, apiKey string, req evolution.SendMediaRequest) (*evolution.SendMessageResponse, error) {
	return &evolution.SendMessageResponse{}, nil
}

func (g *stubGateway) SetWebhook(name, apiKey, webhookURL string, events []string) error { return nil }

func (g *stubGateway) FindWebhook(name, apiKey string) (*evolution.WebhookSettings, error) {
	return &evolution.WebhookSettings{}, nil
}

func (g *stubGateway) FindContacts(name, apiKey string) ([]evolution.ContactRecord, error) {
	return nil, nil
}

func (g *stubGateway) FindChats(name, apiKey string) ([]evolution.ChatRecord, error) {
	return g.chats, nil
}

func (g *stubGateway) FindMessages(name, apiKey, remoteJid string, limit int) ([]evolution.MessageRecord, error) {
	return nil, nil
}

// recordingSink captures broadcast events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) BroadcastEvent(eventType string, data interface{}) {
	s.mu.Lock()
	s.events = append(s.events, eventType)
	s.mu.Unlock()
}

func (s *recordingSink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func newTestProvider() (*Provider, *whatsapp.Service, *stubGateway, *recordingSink) {
	gw := &stubGateway{state: "close"}
	svc := whatsapp.NewService(gw, whatsapp.NewRegistry())
	sink := &recordingSink{}
	return NewProvider(svc, sink), svc, gw, sink
}

func TestInitAutoSelectsConnectedInstance(t *testing.T) {
	p, svc, gw, _ := newTestProvider()

	_, err := svc.CreateInstance("billing", true, "")
	require.NoError(t, err)
	_, err = svc.CreateInstance("sales", true, "")
	require.NoError(t, err)

	gw.state = "open"
	_, err = svc.CheckConnectionState("sales")
	require.NoError(t, err)

	p.Init()

	active, ok := p.ActiveInstance()
	require.True(t, ok)
	assert.Equal(t, "sales", active.Name)
}

func TestInitKeepsExistingSelection(t *testing.T) {
	p, svc, gw, _ := newTestProvider()

	_, err := svc.CreateInstance("billing", true, "")
	require.NoError(t, err)
	_, err = svc.CreateInstance("sales", true, "")
	require.NoError(t, err)
	gw.state = "open"
	_, err = svc.CheckConnectionState("billing")
	require.NoError(t, err)
	_, err = svc.CheckConnectionState("sales")
	require.NoError(t, err)

	require.NoError(t, p.SetActiveInstance("sales"))
	p.Init()

	active, ok := p.ActiveInstance()
	require.True(t, ok)
	assert.Equal(t, "sales", active.Name)
}

func TestSetActiveInstanceUnknownName(t *testing.T) {
	p, _, _, _ := newTestProvider()

	err := p.SetActiveInstance("ghost")
	assert.ErrorIs(t, err, whatsapp.ErrInstanceNotFound)

	_, ok := p.ActiveInstance()
	assert.False(t, ok)
}

func TestDeleteInstanceClearsSelection(t *testing.T) {
	p, _, _, sink := newTestProvider()

	_, err := p.CreateInstance("sales", true, "")
	require.NoError(t, err)
	require.NoError(t, p.SetActiveInstance("sales"))

	require.NoError(t, p.DeleteInstance("sales"))

	_, ok := p.ActiveInstance()
	assert.False(t, ok)
	assert.Contains(t, sink.seen(), "instance_deleted")
}

func TestLogoutInstanceClearsSelection(t *testing.T) {
	p, _, _, _ := newTestProvider()

	_, err := p.CreateInstance("sales", true, "")
	require.NoError(t, err)
	require.NoError(t, p.SetActiveInstance("sales"))

	require.NoError(t, p.LogoutInstance("sales"))

	_, ok := p.ActiveInstance()
	assert.False(t, ok)

	// The record itself survives the logout.
	assert.Len(t, p.Instances(), 1)
}

func TestAddMessageDeduplicatesByID(t *testing.T) {
	p, _, _, sink := newTestProvider()

	msg := whatsapp.Message{ID: "M1", Content: "oi"}
	assert.True(t, p.AddMessage(msg))
	assert.False(t, p.AddMessage(msg))
	assert.False(t, p.AddMessage(whatsapp.Message{ID: "M1", Content: "edited"}))

	msgs := p.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "oi", msgs[0].Content)

	events := sink.seen()
	count := 0
	for _, e := range events {
		if e == "new_message" {
			count++
		}
	}
	assert.Equal(t, 1, count, "duplicates must not re-broadcast")
}

func TestMessagesReturnsCopy(t *testing.T) {
	p, _, _, _ := newTestProvider()
	p.AddMessage(whatsapp.Message{ID: "M1", Content: "oi"})

	msgs := p.Messages()
	msgs[0].Content = "tampered"

	again := p.Messages()
	assert.Equal(t, "oi", again[0].Content)
}

func TestLoadChatsReplacesSnapshot(t *testing.T) {
	p, svc, gw, _ := newTestProvider()

	_, err := svc.CreateInstance("sales", true, "")
	require.NoError(t, err)

	gw.chats = []evolution.ChatRecord{{ID: "a@s.whatsapp.net"}, {ID: "b@s.whatsapp.net"}}
	chats, err := p.LoadChats("sales")
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	gw.chats = []evolution.ChatRecord{{ID: "c@s.whatsapp.net"}}
	_, err = p.LoadChats("sales")
	require.NoError(t, err)

	snapshot := p.Chats()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "c@s.whatsapp.net", snapshot[0].RemoteJid)
}

func TestSendErrorBroadcast(t *testing.T) {
	p, _, _, sink := newTestProvider()

	_, err := p.SendTextMessage(whatsapp.SendMessageRequest{InstanceName: "ghost", PhoneNumber: "5511999999999", Message: "oi"})
	require.Error(t, err)
	assert.Contains(t, sink.seen(), "send_error")
	assert.Empty(t, p.Messages())
}

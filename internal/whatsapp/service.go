package whatsapp

import (
	"fmt"
	"log"
	"strings"
	"time"

	"atendechat/internal/evolution"
)

// Gateway is the slice of the Evolution API client the service depends on.
// *evolution.Client satisfies it; tests substitute a fake.
type Gateway interface {
	CreateInstance(req evolution.CreateInstanceRequest) (*evolution.CreateInstanceResponse, error)
	DeleteInstance(instanceName, apiKey string) error
	ConnectInstance(instanceName, apiKey string) (*evolution.ConnectResponse, error)
	LogoutInstance(instanceName, apiKey string) error
	RestartInstance(instanceName, apiKey string) error
	GetConnectionState(instanceName, apiKey string) (*evolution.ConnectionState, error)
	SendTextMessage(instanceName, apiKey string, req evolution.SendTextRequest) (*evolution.SendMessageResponse, error)
	SendMediaMessage(instanceName, apiKey string, req evolution.SendMediaRequest) (*evolution.SendMessageResponse, error)
	SetWebhook(instanceName, apiKey, webhookURL string, events []string) error
	FindWebhook(instanceName, apiKey string) (*evolution.WebhookSettings, error)
	FindContacts(instanceName, apiKey string) ([]evolution.ContactRecord, error)
	FindChats(instanceName, apiKey string) ([]evolution.ChatRecord, error)
	FindMessages(instanceName, apiKey, remoteJid string, limit int) ([]evolution.MessageRecord, error)
}

// Service serializes each lifecycle operation into a gateway call followed by
// a registry update, in that order: the registry only changes after the
// gateway call succeeds. Errors are logged and returned, never swallowed.
type Service struct {
	gateway  Gateway
	registry *Registry
}

func NewService(gateway Gateway, registry *Registry) *Service {
	return &Service{gateway: gateway, registry: registry}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// CreateInstance provisions a new named connection at the gateway and
// registers it locally. A live name must be deleted before it can be created
// again.
func (s *Service) CreateInstance(name string, enableQR bool, webhookURL string) (Instance, error) {
	if strings.TrimSpace(name) == "" {
		return Instance{}, &ValidationError{Field: "instance_name", Reason: "must not be empty"}
	}
	if _, exists := s.registry.Get(name); exists {
		return Instance{}, fmt.Errorf("create %q: %w", name, ErrInstanceExists)
	}

	resp, err := s.gateway.CreateInstance(evolution.CreateInstanceRequest{
		InstanceName:    name,
		Qrcode:          enableQR,
		WebhookURL:      webhookURL,
		WebhookByEvents: true,
	})
	if err != nil {
		log.Printf("Error creating instance %s: %v", name, err)
		return Instance{}, err
	}

	status := StatusDisconnected
	qr := ""
	if enableQR {
		status = StatusQRCode
		if resp.Qrcode != nil {
			qr = resp.Qrcode.Base64
		}
	}

	inst := s.registry.Put(Instance{
		Name:       resp.Instance.InstanceName,
		ExternalID: resp.Instance.InstanceID,
		APIKey:     resp.Hash.APIKey,
		Status:     status,
		QRCode:     qr,
		WebhookURL: webhookURL,
	})
	return inst, nil
}

// DeleteInstance removes the connection at the gateway and drops the local
// record. The record survives a failed gateway call.
func (s *Service) DeleteInstance(name string) error {
	inst, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("delete %q: %w", name, ErrInstanceNotFound)
	}
	if err := s.gateway.DeleteInstance(name, inst.APIKey); err != nil {
		log.Printf("Error deleting instance %s: %v", name, err)
		return err
	}
	s.registry.Delete(name)
	return nil
}

// ConnectInstance triggers (re)generation of a pairing QR and moves the
// instance to connecting. May be called repeatedly.
func (s *Service) ConnectInstance(name string) (string, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("connect %q: %w", name, ErrInstanceNotFound)
	}
	resp, err := s.gateway.ConnectInstance(name, inst.APIKey)
	if err != nil {
		log.Printf("Error connecting instance %s: %v", name, err)
		return "", err
	}
	_, err = s.registry.Update(name, func(i *Instance) {
		i.Status = StatusConnecting
		i.QRCode = resp.Base64
	})
	if err != nil {
		return "", err
	}
	return resp.Base64, nil
}

// LogoutInstance closes the remote session; the record stays registered with
// status disconnected.
func (s *Service) LogoutInstance(name string) error {
	inst, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("logout %q: %w", name, ErrInstanceNotFound)
	}
	if err := s.gateway.LogoutInstance(name, inst.APIKey); err != nil {
		log.Printf("Error logging out instance %s: %v", name, err)
		return err
	}
	_, err := s.registry.Update(name, func(i *Instance) {
		i.Status = StatusDisconnected
		i.QRCode = ""
	})
	return err
}

func (s *Service) RestartInstance(name string) error {
	inst, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("restart %q: %w", name, ErrInstanceNotFound)
	}
	if err := s.gateway.RestartInstance(name, inst.APIKey); err != nil {
		log.Printf("Error restarting instance %s: %v", name, err)
		return err
	}
	_, err := s.registry.Update(name, func(i *Instance) {
		i.Status = StatusConnecting
	})
	return err
}

// CheckConnectionState polls the gateway and folds the result into the
// registry. The instance revision is captured before the round trip; if any
// other mutation lands while the poll is in flight, the poll result is
// discarded rather than overwriting the newer state.
func (s *Service) CheckConnectionState(name string) (Status, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("connection state %q: %w", name, ErrInstanceNotFound)
	}

	resp, err := s.gateway.GetConnectionState(name, inst.APIKey)
	if err != nil {
		log.Printf("Error checking connection state of %s: %v", name, err)
		return "", err
	}

	status := mapConnectionState(resp.State)
	current, applied, err := s.registry.CompareAndSetStatus(name, inst.Revision, status)
	if err != nil {
		return "", fmt.Errorf("connection state %q: %w", name, err)
	}
	if !applied {
		log.Printf("Discarding stale connection state %q for %s (instance changed during poll)", resp.State, name)
		return current.Status, nil
	}
	return current.Status, nil
}

func mapConnectionState(state string) Status {
	switch state {
	case "open":
		return StatusConnected
	case "connecting":
		return StatusConnecting
	default:
		return StatusDisconnected
	}
}

// defaultSendOptions simulates human presence on outbound sends, matching the
// dashboard behavior.
func defaultSendOptions() *evolution.MessageOptions {
	return &evolution.MessageOptions{Delay: 1000, Presence: "composing"}
}

// SendTextMessage sends a plain text message. The instance must exist and be
// connected; neither failure issues a gateway call.
func (s *Service) SendTextMessage(req SendMessageRequest) (Message, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Message{}, &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	inst, ok := s.registry.Get(req.InstanceName)
	if !ok {
		return Message{}, fmt.Errorf("send text on %q: %w", req.InstanceName, ErrInstanceNotFound)
	}
	if inst.Status != StatusConnected {
		return Message{}, fmt.Errorf("send text on %q (status %s): %w", req.InstanceName, inst.Status, ErrInstanceNotConnected)
	}

	resp, err := s.gateway.SendTextMessage(req.InstanceName, inst.APIKey, evolution.SendTextRequest{
		Number:      req.PhoneNumber,
		Options:     defaultSendOptions(),
		TextMessage: evolution.TextMessage{Text: req.Message},
	})
	if err != nil {
		log.Printf("Error sending text message on %s: %v", req.InstanceName, err)
		return Message{}, err
	}

	return Message{
		ID:           resp.Key.ID,
		InstanceName: req.InstanceName,
		RemoteJid:    req.PhoneNumber,
		FromMe:       true,
		MessageType:  "text",
		Content:      req.Message,
		Timestamp:    time.Now().UnixMilli(),
		Status:       "sent",
	}, nil
}

// SendMediaMessage sends an image, video, audio or document by URL.
func (s *Service) SendMediaMessage(req SendMessageRequest) (Message, error) {
	if req.MediaURL == "" || req.MediaType == "" {
		return Message{}, &ValidationError{Field: "media", Reason: "media_url and media_type are required"}
	}
	inst, ok := s.registry.Get(req.InstanceName)
	if !ok {
		return Message{}, fmt.Errorf("send media on %q: %w", req.InstanceName, ErrInstanceNotFound)
	}
	if inst.Status != StatusConnected {
		return Message{}, fmt.Errorf("send media on %q (status %s): %w", req.InstanceName, inst.Status, ErrInstanceNotConnected)
	}

	resp, err := s.gateway.SendMediaMessage(req.InstanceName, inst.APIKey, evolution.SendMediaRequest{
		Number:  req.PhoneNumber,
		Options: defaultSendOptions(),
		MediaMessage: evolution.MediaMessage{
			Mediatype: req.MediaType,
			Media:     req.MediaURL,
			Caption:   req.Caption,
			FileName:  req.FileName,
		},
	})
	if err != nil {
		log.Printf("Error sending media message on %s: %v", req.InstanceName, err)
		return Message{}, err
	}

	return Message{
		ID:           resp.Key.ID,
		InstanceName: req.InstanceName,
		RemoteJid:    req.PhoneNumber,
		FromMe:       true,
		MessageType:  req.MediaType,
		Content:      req.Caption,
		Timestamp:    time.Now().UnixMilli(),
		Status:       "sent",
		MediaURL:     req.MediaURL,
		FileName:     req.FileName,
	}, nil
}

// SetWebhook registers the event delivery URL for an instance, overwriting
// any previous registration. A nil/empty events slice registers the default
// event set.
func (s *Service) SetWebhook(name, webhookURL string, events []string) error {
	inst, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("set webhook on %q: %w", name, ErrInstanceNotFound)
	}
	if err := s.gateway.SetWebhook(name, inst.APIKey, webhookURL, events); err != nil {
		log.Printf("Error setting webhook on %s: %v", name, err)
		return err
	}
	_, err := s.registry.Update(name, func(i *Instance) {
		i.WebhookURL = webhookURL
	})
	return err
}

func (s *Service) FindWebhook(name string) (*evolution.WebhookSettings, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("find webhook on %q: %w", name, ErrInstanceNotFound)
	}
	return s.gateway.FindWebhook(name, inst.APIKey)
}

// GetContacts reads the gateway address book. No local cache is kept.
func (s *Service) GetContacts(name string) ([]Contact, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("contacts on %q: %w", name, ErrInstanceNotFound)
	}
	records, err := s.gateway.FindContacts(name, inst.APIKey)
	if err != nil {
		log.Printf("Error fetching contacts on %s: %v", name, err)
		return nil, err
	}

	contacts := make([]Contact, 0, len(records))
	for _, rec := range records {
		contactName := rec.Name
		if contactName == "" {
			contactName = rec.PushName
		}
		contacts = append(contacts, Contact{
			Jid:           rec.ID,
			Name:          contactName,
			PushName:      rec.PushName,
			IsGroup:       isGroupJid(rec.ID),
			ProfilePicURL: rec.ProfilePicURL,
		})
	}
	return contacts, nil
}

// GetChats returns the conversation summaries for an instance; the result
// replaces any previous snapshot wholesale.
func (s *Service) GetChats(name string) ([]Chat, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("chats on %q: %w", name, ErrInstanceNotFound)
	}
	records, err := s.gateway.FindChats(name, inst.APIKey)
	if err != nil {
		log.Printf("Error fetching chats on %s: %v", name, err)
		return nil, err
	}

	chats := make([]Chat, 0, len(records))
	for _, rec := range records {
		chats = append(chats, Chat{
			ID:           rec.ID,
			InstanceName: name,
			RemoteJid:    rec.ID,
			Name:         rec.Name,
			IsGroup:      isGroupJid(rec.ID),
			UnreadCount:  rec.UnreadCount,
			Archived:     rec.Archived,
			Pinned:       rec.Pinned,
		})
	}
	return chats, nil
}

// GetChatMessages returns at most limit messages for the counterparty.
func (s *Service) GetChatMessages(name, remoteJid string, limit int) ([]Message, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("messages on %q: %w", name, ErrInstanceNotFound)
	}
	records, err := s.gateway.FindMessages(name, inst.APIKey, remoteJid, limit)
	if err != nil {
		log.Printf("Error fetching messages on %s: %v", name, err)
		return nil, err
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		_, content := DecodeContent(rec.Message)
		msgType := rec.MessageType
		if msgType == "" {
			msgType = "text"
		}
		messages = append(messages, Message{
			ID:           rec.Key.ID,
			InstanceName: name,
			RemoteJid:    rec.Key.RemoteJid,
			FromMe:       rec.Key.FromMe,
			MessageType:  msgType,
			Content:      content,
			Timestamp:    rec.MessageTimestamp,
			Status:       "delivered",
		})
	}
	return messages, nil
}

// GetInstance returns a copy of the named instance record.
func (s *Service) GetInstance(name string) (Instance, error) {
	inst, ok := s.registry.Get(name)
	if !ok {
		return Instance{}, fmt.Errorf("get %q: %w", name, ErrInstanceNotFound)
	}
	return inst, nil
}

func (s *Service) ListInstances() []Instance {
	return s.registry.List()
}

func isGroupJid(jid string) bool {
	return strings.Contains(jid, "@g.us")
}

package appstate

import (
	"sync"

	"atendechat/internal/whatsapp"
)

// EventSink receives dashboard-facing events (instance updates, new
// messages). The websocket hub satisfies it; business results never depend on
// whether an event was delivered.
type EventSink interface {
	BroadcastEvent(eventType string, data interface{})
}

type nopSink struct{}

func (nopSink) BroadcastEvent(string, interface{}) {}

// Provider adapts the WhatsApp service to the dashboard: it owns the active
// instance selection, the accumulated message list (deduplicated by message
// id, append order) and the latest chat snapshot. Mutating operations hold a
// busy counter for their duration.
type Provider struct {
	service *whatsapp.Service
	sink    EventSink

	mu       sync.Mutex
	active   string
	messages []whatsapp.Message
	seen     map[string]struct{}
	chats    []whatsapp.Chat
	busy     int
}

func NewProvider(service *whatsapp.Service, sink EventSink) *Provider {
	if sink == nil {
		sink = nopSink{}
	}
	return &Provider{
		service: service,
		sink:    sink,
		seen:    make(map[string]struct{}),
	}
}

// Init loads known instances and, absent an existing selection, auto-selects
// the first connected one.
func (p *Provider) Init() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoSelectLocked()
}

func (p *Provider) autoSelectLocked() {
	if p.active != "" {
		return
	}
	for _, inst := range p.service.ListInstances() {
		if inst.Status == whatsapp.StatusConnected {
			p.active = inst.Name
			return
		}
	}
}

// Busy reports whether any mutating operation is in flight.
func (p *Provider) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy > 0
}

func (p *Provider) beginOp() {
	p.mu.Lock()
	p.busy++
	p.mu.Unlock()
}

func (p *Provider) endOp() {
	p.mu.Lock()
	p.busy--
	p.mu.Unlock()
}

// ActiveInstance returns the currently selected instance, if any.
func (p *Provider) ActiveInstance() (whatsapp.Instance, bool) {
	p.mu.Lock()
	name := p.active
	p.mu.Unlock()
	if name == "" {
		return whatsapp.Instance{}, false
	}
	inst, err := p.service.GetInstance(name)
	if err != nil {
		return whatsapp.Instance{}, false
	}
	return inst, true
}

// SetActiveInstance overrides the selection. An empty name clears it.
func (p *Provider) SetActiveInstance(name string) error {
	if name != "" {
		if _, err := p.service.GetInstance(name); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.active = name
	p.mu.Unlock()
	return nil
}

func (p *Provider) Instances() []whatsapp.Instance {
	return p.service.ListInstances()
}

func (p *Provider) CreateInstance(name string, enableQR bool, webhookURL string) (whatsapp.Instance, error) {
	p.beginOp()
	defer p.endOp()

	inst, err := p.service.CreateInstance(name, enableQR, webhookURL)
	if err != nil {
		p.sink.BroadcastEvent("instance_error", map[string]string{"instance_name": name, "error": err.Error()})
		return whatsapp.Instance{}, err
	}
	p.sink.BroadcastEvent("instance_update", inst)
	return inst, nil
}

func (p *Provider) DeleteInstance(name string) error {
	p.beginOp()
	defer p.endOp()

	if err := p.service.DeleteInstance(name); err != nil {
		p.sink.BroadcastEvent("instance_error", map[string]string{"instance_name": name, "error": err.Error()})
		return err
	}

	p.mu.Lock()
	if p.active == name {
		p.active = ""
	}
	p.mu.Unlock()

	p.sink.BroadcastEvent("instance_deleted", map[string]string{"instance_name": name})
	return nil
}

func (p *Provider) ConnectInstance(name string) (string, error) {
	p.beginOp()
	defer p.endOp()

	qr, err := p.service.ConnectInstance(name)
	if err != nil {
		p.sink.BroadcastEvent("instance_error", map[string]string{"instance_name": name, "error": err.Error()})
		return "", err
	}
	if inst, gerr := p.service.GetInstance(name); gerr == nil {
		p.sink.BroadcastEvent("instance_update", inst)
	}
	return qr, nil
}

func (p *Provider) LogoutInstance(name string) error {
	p.beginOp()
	defer p.endOp()

	if err := p.service.LogoutInstance(name); err != nil {
		p.sink.BroadcastEvent("instance_error", map[string]string{"instance_name": name, "error": err.Error()})
		return err
	}

	p.mu.Lock()
	if p.active == name {
		p.active = ""
	}
	p.mu.Unlock()

	if inst, gerr := p.service.GetInstance(name); gerr == nil {
		p.sink.BroadcastEvent("instance_update", inst)
	}
	return nil
}

func (p *Provider) SendTextMessage(req whatsapp.SendMessageRequest) (whatsapp.Message, error) {
	p.beginOp()
	defer p.endOp()

	msg, err := p.service.SendTextMessage(req)
	if err != nil {
		p.sink.BroadcastEvent("send_error", map[string]string{"instance_name": req.InstanceName, "error": err.Error()})
		return whatsapp.Message{}, err
	}
	p.AddMessage(msg)
	return msg, nil
}

func (p *Provider) SendMediaMessage(req whatsapp.SendMessageRequest) (whatsapp.Message, error) {
	p.beginOp()
	defer p.endOp()

	msg, err := p.service.SendMediaMessage(req)
	if err != nil {
		p.sink.BroadcastEvent("send_error", map[string]string{"instance_name": req.InstanceName, "error": err.Error()})
		return whatsapp.Message{}, err
	}
	p.AddMessage(msg)
	return msg, nil
}

// AddMessage accumulates a message, dropping duplicates by id. Accumulation
// is append order, not timestamp order; callers needing chronology sort.
func (p *Provider) AddMessage(msg whatsapp.Message) bool {
	p.mu.Lock()
	if _, dup := p.seen[msg.ID]; dup {
		p.mu.Unlock()
		return false
	}
	p.seen[msg.ID] = struct{}{}
	p.messages = append(p.messages, msg)
	p.mu.Unlock()

	p.sink.BroadcastEvent("new_message", msg)
	return true
}

// Messages returns a copy of the accumulated message list.
func (p *Provider) Messages() []whatsapp.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]whatsapp.Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// LoadChats fetches the chat list for an instance and replaces the snapshot
// wholesale.
func (p *Provider) LoadChats(instanceName string) ([]whatsapp.Chat, error) {
	chats, err := p.service.GetChats(instanceName)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.chats = chats
	p.mu.Unlock()
	return chats, nil
}

// Chats returns the last fetched chat snapshot.
func (p *Provider) Chats() []whatsapp.Chat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]whatsapp.Chat, len(p.chats))
	copy(out, p.chats)
	return out
}

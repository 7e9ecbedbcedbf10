package whatsapp

import (
	"log"

	"github.com/robfig/cron/v3"
)

// StatusPoller reconciles pairing instances against the gateway on a fixed
// schedule. Only instances in qr_code or connecting are polled; an instance
// stops being swept once it settles on connected or disconnected.
type StatusPoller struct {
	service *Service
	cron    *cron.Cron
	spec    string
}

// NewStatusPoller schedules sweeps with a cron spec such as "@every 5s".
func NewStatusPoller(service *Service, spec string) *StatusPoller {
	return &StatusPoller{
		service: service,
		cron:    cron.New(),
		spec:    spec,
	}
}

func (p *StatusPoller) Start() error {
	if _, err := p.cron.AddFunc(p.spec, p.sweep); err != nil {
		return err
	}
	p.cron.Start()
	log.Printf("Status poller started (%s)", p.spec)
	return nil
}

func (p *StatusPoller) Stop() {
	p.cron.Stop()
}

func (p *StatusPoller) sweep() {
	for _, inst := range p.service.ListInstances() {
		if inst.Status != StatusQRCode && inst.Status != StatusConnecting {
			continue
		}
		if _, err := p.service.CheckConnectionState(inst.Name); err != nil {
			log.Printf("Status poll failed for %s: %v", inst.Name, err)
		}
	}
}

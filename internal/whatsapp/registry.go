package whatsapp

import (
	"sort"
	"sync"
	"time"
)

// Registry is the authoritative local view of all instances. It is an
// explicitly constructed object, created at startup and passed to consumers;
// there is no package-level singleton. All accessors work on copies, so
// callers never hold a reference into the map.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	now       func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]*Instance),
		now:       time.Now,
	}
}

// Put inserts or replaces an instance record, bumping its revision.
func (r *Registry) Put(inst Instance) Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.instances[inst.Name]; ok {
		inst.Revision = prev.Revision + 1
	} else {
		inst.Revision = 1
	}
	inst.LastUpdate = r.now()
	stored := inst
	r.instances[inst.Name] = &stored
	return inst
}

// Get returns a copy of the named instance.
func (r *Registry) Get(name string) (Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[name]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// List returns copies of all instances, ordered by name.
func (r *Registry) List() []Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Delete removes the named instance. Returns false if it was not registered.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[name]; !ok {
		return false
	}
	delete(r.instances, name)
	return true
}

// Update applies fn to the named instance under the lock, bumping revision
// and LastUpdate. Returns ErrInstanceNotFound for unknown names.
func (r *Registry) Update(name string, fn func(*Instance)) (Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[name]
	if !ok {
		return Instance{}, ErrInstanceNotFound
	}
	fn(inst)
	inst.Revision++
	inst.LastUpdate = r.now()
	return *inst, nil
}

// CompareAndSetStatus applies the status only if the instance revision still
// equals rev, i.e. no other mutation landed since the caller captured the
// record. A poll response that lost the race is reported with applied=false
// and the current record is returned unchanged.
func (r *Registry) CompareAndSetStatus(name string, rev uint64, status Status) (Instance, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[name]
	if !ok {
		return Instance{}, false, ErrInstanceNotFound
	}
	if inst.Revision != rev {
		return *inst, false, nil
	}
	inst.Status = status
	if status != StatusQRCode && status != StatusConnecting {
		inst.QRCode = ""
	}
	inst.Revision++
	inst.LastUpdate = r.now()
	return *inst, true, nil
}

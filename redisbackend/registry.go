package redisbackend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

// Registry maps instance ids to their connection settings.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]Config
	logger    Logger
}

// NewRegistry creates a Registry holding instances.
func NewRegistry(instances map[string]Config) *Registry {
	r := &Registry{instances: make(map[string]Config, len(instances))}
	for id, cfg := range instances {
		r.instances[id] = cfg
	}
	return r
}

// WithLogger attaches a logger handed to every acquired backend.
func (r *Registry) WithLogger(logger Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds or replaces the instance id.
func (r *Registry) Register(id string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("instance %q: %w", id, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[id] = cfg
	return nil
}

// Remove forgets the instance id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, id)
}

// Resolve returns the handle acquisition of instance id, or an error matching
// monitor.ErrUnknownTarget.
func (r *Registry) Resolve(id string) (monitor.AcquireFunc, error) {
	r.mu.RLock()
	cfg, ok := r.instances[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("instance %q: %w", id, monitor.ErrUnknownTarget)
	}
	return NewAcquireFunc(cfg, r.logger), nil
}

// IDs returns the registered instance ids in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package profiler

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

// BackendResolver maps an instance id to the function acquiring its backend.
// Unknown ids fail with an error matching monitor.ErrUnknownTarget.
// It is implemented by *redisbackend.Registry.
type BackendResolver interface {
	Resolve(id string) (monitor.AcquireFunc, error)
	IDs() []string
}

// ObserverFactory creates Observers. It is implemented by *monitor.Factory.
type ObserverFactory interface {
	New(name string) *monitor.Observer
}

// Manager keeps one Observer per instance id so every profiler client of an instance
// shares the same shard streams.
type Manager struct {
	instrumentation

	factory  ObserverFactory
	resolver BackendResolver

	initGroup singleflight.Group

	mu        sync.Mutex
	observers map[string]*monitor.Observer
}

// NewManager creates a Manager.
func NewManager(factory ObserverFactory, resolver BackendResolver) *Manager {
	return &Manager{
		factory:   factory,
		resolver:  resolver,
		observers: make(map[string]*monitor.Observer),
	}
}

// WithLogger sets the logger.
func (m *Manager) WithLogger(logger Logger) *Manager {
	m.logger = logger
	return m
}

// Known returns nil when id resolves to a backend.
func (m *Manager) Known(id string) error {
	_, err := m.resolver.Resolve(id)
	return err
}

// Instances returns the ids of all known instances, sorted.
func (m *Manager) Instances() []string {
	ids := m.resolver.IDs()
	sort.Strings(ids)
	return ids
}

// GetObserver returns the Observer of instance id, creating it on first use and
// running Init whenever it is not connected. Concurrent callers for the same id share
// one Init.
func (m *Manager) GetObserver(ctx context.Context, id string) (*monitor.Observer, error) {
	acquire, err := m.resolver.Resolve(id)
	if err != nil {
		return nil, err
	}

	v, err, _ := m.initGroup.Do(id, func() (interface{}, error) {
		m.mu.Lock()
		obs, ok := m.observers[id]
		if !ok {
			obs = m.factory.New(id)
			m.observers[id] = obs
		}
		m.mu.Unlock()

		if !obs.Status().Reinitializable() {
			return obs, nil
		}

		start := time.Now()
		err := obs.Init(ctx, acquire)
		m.observeOperation("get_observer", id, "", time.Since(start), err, 0)
		if err != nil {
			m.logWarn(ctx, "Initializing observer failed", err, map[string]interface{}{
				"instance": id,
			})
			return nil, err
		}
		return obs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*monitor.Observer), nil
}

// RemoveObserver tears down and forgets the Observer of id.
func (m *Manager) RemoveObserver(id string) {
	m.mu.Lock()
	obs, ok := m.observers[id]
	delete(m.observers, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := obs.Close(); err != nil {
		m.logWarn(context.Background(), "Closing observer failed", err, map[string]interface{}{
			"instance": id,
		})
	}
}

// Count returns the number of Observers held.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observers)
}

// Shutdown tears down every Observer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.RemoveObserver(id)
	}
}

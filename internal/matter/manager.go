package matter

import "sync"

// Manager hands out the single engine instance for each matter identity.
// Operations on different matters are fully independent; operations on the
// same matter serialize on that engine's mutex.
type Manager struct {
	store    *Store
	audit    Recorder
	notifier Notifier

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager creates a Manager. audit and notifier may be nil.
func NewManager(store *Store, auditSink Recorder, notifier Notifier) *Manager {
	return &Manager{
		store:    store,
		audit:    auditSink,
		notifier: notifier,
		engines:  make(map[string]*Engine),
	}
}

// Engine returns the actor for the given matter identity, creating it on
// first access.
func (m *Manager) Engine(teamID, matterID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := teamID + "/" + matterID
	if e, ok := m.engines[key]; ok {
		return e
	}

	e := &Engine{
		teamID:   teamID,
		matterID: matterID,
		store:    m.store,
		audit:    m.audit,
		notifier: m.notifier,
	}
	m.engines[key] = e
	return e
}

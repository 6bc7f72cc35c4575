package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Manager owns the live session set. Session IDs are case-insensitive:
// every ID is canonicalized once at the door, so the map holds exactly one
// record per session and the snapshot store sees one file name per session.
type Manager struct {
	mu    sync.RWMutex
	live  map[string]*service.Session
	store SessionPersistence
}

func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence builds a manager that snapshots every session
// change to the given store.
func NewManagerWithPersistence(store SessionPersistence) *Manager {
	return &Manager{
		live:  make(map[string]*service.Session),
		store: store,
	}
}

// canonicalID normalizes a session ID. Lookups, storage and snapshot file
// names all use this form.
func canonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Create builds a session for the puzzle and registers it under the
// canonical form of id. An empty ID gets a fresh 4-hex-character one.
func (m *Manager) Create(id string, config *engine.PuzzleConfig) (*service.Session, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	cid := canonicalID(id)
	if cid == "" {
		cid = m.unusedIDLocked()
	} else if _, taken := m.live[cid]; taken {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             cid,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.live[cid] = sess
	m.mu.Unlock()

	m.persist(sess)
	return sess, nil
}

// Get returns the live session for id, reviving it from the snapshot store
// when the session is not in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	cid := canonicalID(id)

	m.mu.RLock()
	sess, ok := m.live[cid]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	return m.revive(cid)
}

// GetOrCreate returns the session for id, creating it when it does not
// exist yet.
func (m *Manager) GetOrCreate(id string, config *engine.PuzzleConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return nil, err
}

// List returns every live session.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.live))
	for _, sess := range m.live {
		result = append(result, sess)
	}
	return result
}

// Delete removes the session from memory and its snapshot from the store.
func (m *Manager) Delete(id string) error {
	cid := canonicalID(id)

	m.mu.Lock()
	_, inMemory := m.live[cid]
	delete(m.live, cid)
	m.mu.Unlock()

	if m.store != nil && m.store.Exists(cid) {
		if err := m.store.Delete(cid); err != nil {
			return fmt.Errorf("failed to delete session snapshot: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops the live record but leaves any snapshot alone.
// The filesystem sync routine uses it when a snapshot file disappears out
// from under the server.
func (m *Manager) DeleteFromMemory(id string) error {
	cid := canonicalID(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live[cid]; !ok {
		return ErrSessionNotFound
	}
	delete(m.live, cid)
	return nil
}

// UpdateLastAccessed stamps the session's access time and snapshots it.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	sess, ok := m.live[canonicalID(id)]
	if ok {
		sess.LastAccessedAt = time.Now()
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	m.persist(sess)
	return nil
}

// Save snapshots one session on demand.
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.live[canonicalID(id)]
	m.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// CleanupExpiredSessions drops sessions idle longer than maxAge and deletes
// their snapshots, so an expired session does not come back on the next
// restart. Returns the number of sessions removed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []string
	for id, sess := range m.live {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.live, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	if m.store != nil {
		for _, id := range expired {
			if !m.store.Exists(id) {
				continue
			}
			if err := m.store.Delete(id); err != nil {
				log.Printf("Warning: failed to delete snapshot for expired session %s: %v", id, err)
			}
		}
	}

	return len(expired)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

// LoadPersistedSessions fills memory from every snapshot in the store.
// Sessions already live keep their in-memory record and unreadable
// snapshots are skipped with a warning.
func (m *Manager) LoadPersistedSessions() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list session snapshots: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		cid := canonicalID(id)

		m.mu.RLock()
		_, alive := m.live[cid]
		m.mu.RUnlock()
		if alive {
			continue
		}

		sess, err := m.store.Load(id)
		if err != nil {
			log.Printf("Warning: skipping unreadable session snapshot %s: %v", id, err)
			continue
		}

		m.mu.Lock()
		if _, alive := m.live[cid]; !alive {
			m.live[cid] = sess
			loaded++
		}
		m.mu.Unlock()
	}

	if loaded > 0 {
		log.Printf("Restored %d sessions from snapshots", loaded)
	}
	return nil
}

// SaveAllSessions snapshots every live session. Used on shutdown.
func (m *Manager) SaveAllSessions() error {
	if m.store == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.store.Save(sess); err != nil {
			log.Printf("Warning: failed to save session %s: %v", sess.ID, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

// revive loads a snapshot into memory. A concurrent revival of the same
// session wins the map slot; both callers see the same record.
func (m *Manager) revive(cid string) (*service.Session, error) {
	if m.store == nil || !m.store.Exists(cid) {
		return nil, ErrSessionNotFound
	}

	sess, err := m.store.Load(cid)
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	m.mu.Lock()
	if winner, ok := m.live[cid]; ok {
		sess = winner
	} else {
		m.live[cid] = sess
	}
	m.mu.Unlock()

	return sess, nil
}

// persist snapshots the session when a store is configured. Failures are
// logged, not returned; the live session stays usable.
func (m *Manager) persist(sess *service.Session) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(sess); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sess.ID, err)
	}
}

// unusedIDLocked draws random 4-hex-character IDs until one is free.
// Callers hold m.mu.
func (m *Manager) unusedIDLocked() string {
	for {
		raw := make([]byte, 2)
		rand.Read(raw)
		id := hex.EncodeToString(raw)
		if _, taken := m.live[id]; !taken {
			return id
		}
	}
}

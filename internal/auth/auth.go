// Package auth owns the in-memory authorization state: the set of users
// allowed to trade and the time-boxed access requests awaiting owner
// approval. State lives for the process lifetime only; a restart resets it
// to the configured baseline.
package auth

import (
	"sync"
	"time"

	"github.com/solman/solbot/pkg/logger"
)

// PendingTTL is how long an unresolved access request stays valid.
const PendingTTL = 5 * time.Minute

// Stats is a point-in-time snapshot of the authorization state.
type Stats struct {
	AuthorizedUsers int
	PendingRequests int
	OwnerID         int64
}

// Manager is the single owner of the authorized-user set and the pending
// request map. All methods are safe for concurrent use; none of them can
// fail — absence and expiry are normal outcomes.
type Manager struct {
	mu         sync.Mutex
	owner      int64
	openMode   bool
	authorized map[int64]struct{}
	pending    map[int64]time.Time

	now func() time.Time
}

// NewManager builds a Manager from the configured baseline. openMode makes
// IsAuthorized return true for everyone; callers enabling it must log the
// security implication. The owner, when set, is always a member and cannot
// be removed.
func NewManager(owner int64, openMode bool, initial []int64) *Manager {
	m := &Manager{
		owner:      owner,
		openMode:   openMode,
		authorized: make(map[int64]struct{}, len(initial)+1),
		pending:    make(map[int64]time.Time),
		now:        time.Now,
	}
	for _, id := range initial {
		m.authorized[id] = struct{}{}
	}
	if owner != 0 {
		m.authorized[owner] = struct{}{}
	}
	return m
}

// IsAuthorized reports whether uid may invoke privileged operations.
func (m *Manager) IsAuthorized(uid int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openMode {
		return true
	}
	_, ok := m.authorized[uid]
	return ok
}

// IsOwner reports whether uid is the configured owner.
func (m *Manager) IsOwner(uid int64) bool {
	return m.owner != 0 && uid == m.owner
}

// AddUser authorizes uid. Returns false if uid was already authorized.
func (m *Manager) AddUser(uid int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authorized[uid]; ok {
		return false
	}
	m.authorized[uid] = struct{}{}
	logger.Infof("user %d added to authorized users", uid)
	return true
}

// RemoveUser revokes uid's authorization. Removing the owner is a no-op
// returning false, so the owner can never be locked out.
func (m *Manager) RemoveUser(uid int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uid == m.owner {
		return false
	}
	if _, ok := m.authorized[uid]; !ok {
		return false
	}
	delete(m.authorized, uid)
	logger.Infof("user %d removed from authorized users", uid)
	return true
}

// RequestAccess records a pending access request for uid, refreshing the
// timestamp of any earlier request.
func (m *Manager) RequestAccess(uid int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[uid] = m.now()
	logger.Infof("access request from user %d is pending", uid)
}

// ResolveRequest clears any pending request for uid. No-op if absent.
func (m *Manager) ResolveRequest(uid int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, uid)
}

// HasPendingRequest reports whether uid has a fresh pending request.
// Requests older than PendingTTL are evicted on read, so a stale entry is
// gone after the first check.
func (m *Manager) HasPendingRequest(uid int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	requestedAt, ok := m.pending[uid]
	if !ok {
		return false
	}
	if m.now().Sub(requestedAt) > PendingTTL {
		delete(m.pending, uid)
		return false
	}
	return true
}

// AuthorizedUsers returns the authorized user ids in unspecified order.
func (m *Manager) AuthorizedUsers() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.authorized))
	for id := range m.authorized {
		ids = append(ids, id)
	}
	return ids
}

// GetStats returns a snapshot without side effects; expired pending entries
// still count until a HasPendingRequest read evicts them.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		AuthorizedUsers: len(m.authorized),
		PendingRequests: len(m.pending),
		OwnerID:         m.owner,
	}
}

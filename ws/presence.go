package ws

import (
	"sort"
	"sync"

	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/metrics"
)

// PresenceRegistry maps a user id to its live connection. The last
// connection registered for an id wins. Every change is followed by a
// getOnlineUsers broadcast to all registered connections.
//
// Changes hold changeMu through their broadcast, so lists reach clients in
// the order the changes happened. Lookups only take mu and never wait on a
// broadcast.
type PresenceRegistry struct {
	changeMu sync.Mutex
	mu       sync.RWMutex
	conns    map[string]Conn

	metrics *metrics.Metrics
}

func NewPresenceRegistry(m *metrics.Metrics) *PresenceRegistry {
	return &PresenceRegistry{
		conns:   make(map[string]Conn),
		metrics: m,
	}
}

// Register stores conn for userID, replacing any previous connection.
func (p *PresenceRegistry) Register(userID string, conn Conn) {
	p.changeMu.Lock()
	defer p.changeMu.Unlock()

	p.mu.Lock()
	p.conns[userID] = conn
	online, targets := p.snapshotLocked()
	p.mu.Unlock()

	logger.RealtimeLog("connect", userID, nil)
	p.broadcast(online, targets)
}

// Unregister removes userID regardless of which connection is stored.
func (p *PresenceRegistry) Unregister(userID string) {
	p.changeMu.Lock()
	defer p.changeMu.Unlock()

	p.mu.Lock()
	delete(p.conns, userID)
	online, targets := p.snapshotLocked()
	p.mu.Unlock()

	logger.RealtimeLog("disconnect", userID, nil)
	p.broadcast(online, targets)
}

// Release removes userID only if conn is still the stored connection, so a
// stale socket closing does not evict a newer one. Reports whether it removed.
func (p *PresenceRegistry) Release(userID string, conn Conn) bool {
	p.changeMu.Lock()
	defer p.changeMu.Unlock()

	p.mu.Lock()
	current, ok := p.conns[userID]
	if !ok || current != conn {
		p.mu.Unlock()
		return false
	}
	delete(p.conns, userID)
	online, targets := p.snapshotLocked()
	p.mu.Unlock()

	logger.RealtimeLog("disconnect", userID, nil)
	p.broadcast(online, targets)
	return true
}

func (p *PresenceRegistry) Lookup(userID string) (Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.conns[userID]
	return conn, ok
}

// Online returns the ids of connected users, sorted.
func (p *PresenceRegistry) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	online, _ := p.snapshotLocked()
	return online
}

func (p *PresenceRegistry) IsOnline(userID string) bool {
	_, ok := p.Lookup(userID)
	return ok
}

func (p *PresenceRegistry) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

func (p *PresenceRegistry) snapshotLocked() ([]string, []Conn) {
	online := make([]string, 0, len(p.conns))
	targets := make([]Conn, 0, len(p.conns))
	for id, conn := range p.conns {
		online = append(online, id)
		targets = append(targets, conn)
	}
	sort.Strings(online)
	return online, targets
}

// broadcast runs under changeMu but outside mu. A closed connection only
// loses this one event.
func (p *PresenceRegistry) broadcast(online []string, targets []Conn) {
	p.metrics.SetOnline(len(online))
	for _, conn := range targets {
		if err := conn.Emit(EventOnlineUsers, online); err != nil {
			logger.Debug("online users broadcast skipped a connection", "error", err)
		}
	}
}

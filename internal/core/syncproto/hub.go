package syncproto

import (
	"sync"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/model"
)

// Peer receives pushes. Deliver must not block the caller.
type Peer interface {
	Deliver(push Push)
}

// PeerFunc adapts a function to Peer.
type PeerFunc func(push Push)

// Deliver calls fn.
func (fn PeerFunc) Deliver(push Push) {
	fn(push)
}

// Hub routes pushes to the launcher and per-instance surfaces.
type Hub struct {
	mu       sync.RWMutex
	launcher Peer
	surfaces map[model.InstanceID]Peer
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{surfaces: make(map[model.InstanceID]Peer)}
}

// SetLauncher attaches the launcher peer. nil detaches it.
func (hub *Hub) SetLauncher(peer Peer) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.launcher = peer
}

// Attach binds a surface peer to an instance.
func (hub *Hub) Attach(id model.InstanceID, peer Peer) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.surfaces[id] = peer
}

// Detach unbinds an instance. It reports whether a peer was bound.
func (hub *Hub) Detach(id model.InstanceID) bool {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, ok := hub.surfaces[id]; !ok {
		return false
	}
	delete(hub.surfaces, id)
	return true
}

// Attached reports how many surfaces are bound.
func (hub *Hub) Attached() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.surfaces)
}

// SendTo delivers push to one instance's surface only.
func (hub *Hub) SendTo(id model.InstanceID, push Push) bool {
	hub.mu.RLock()
	peer, ok := hub.surfaces[id]
	hub.mu.RUnlock()
	if !ok {
		logrus.WithFields(logrus.Fields{"instance": id, "push": push.Kind}).Debug("no surface for push")
		return false
	}
	peer.Deliver(push)
	return true
}

// Broadcast delivers push to every surface and the launcher.
func (hub *Hub) Broadcast(push Push) {
	hub.mu.RLock()
	peers := make([]Peer, 0, len(hub.surfaces)+1)
	for _, peer := range hub.surfaces {
		peers = append(peers, peer)
	}
	if hub.launcher != nil {
		peers = append(peers, hub.launcher)
	}
	hub.mu.RUnlock()

	for _, peer := range peers {
		peer.Deliver(push)
	}
}

// ToLauncher delivers push to the launcher only.
func (hub *Hub) ToLauncher(push Push) bool {
	hub.mu.RLock()
	launcher := hub.launcher
	hub.mu.RUnlock()
	if launcher == nil {
		return false
	}
	launcher.Deliver(push)
	return true
}

// Package registry keeps the in-memory node registrations of every user.
// A Registry is safe for concurrent use; every operation is applied
// atomically under a single lock covering the whole mapping.
package registry

import (
	"sort"
	"sync"

	"github.com/thoas/go-funk"
)

// NodeEntry is one registered endpoint of a user.
type NodeEntry struct {
	NodeID string
	URL    string
}

// Stats is a point-in-time summary of the registry contents.
type Stats struct {
	Users int
	Nodes int
}

// Registry maps a user key to that user's nodes (node id -> url).
// A user key is present only while it owns at least one node.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		users: map[string]map[string]string{},
	}
}

// List returns the nodes registered for userKey ordered by node id.
// An unknown user yields an empty, non-nil slice.
func (r *Registry) List(userKey string) []NodeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := r.users[userKey]
	result := make([]NodeEntry, 0, len(nodes))
	for nodeID, url := range nodes {
		result = append(result, NodeEntry{NodeID: nodeID, URL: url})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NodeID < result[j].NodeID
	})

	return result
}

// Upsert registers nodeID for userKey, replacing the url of an existing node.
func (r *Registry) Upsert(userKey, nodeID, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes, ok := r.users[userKey]
	if !ok {
		nodes = map[string]string{}
		r.users[userKey] = nodes
	}
	nodes[nodeID] = url
}

// Delete removes nodeID from userKey. The user itself is dropped together with
// its last node. Unknown users and nodes are ignored.
func (r *Registry) Delete(userKey, nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes, ok := r.users[userKey]
	if !ok {
		return
	}
	delete(nodes, nodeID)
	if len(nodes) == 0 {
		delete(r.users, userKey)
	}
}

// Users returns the keys of all users owning at least one node, sorted.
func (r *Registry) Users() []string {
	r.mu.RLock()
	keys := funk.Keys(r.users).([]string)
	r.mu.RUnlock()

	sort.Strings(keys)

	return keys
}

// Stats counts the users and nodes currently registered.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Users: len(r.users)}
	for _, nodes := range r.users {
		stats.Nodes += len(nodes)
	}

	return stats
}

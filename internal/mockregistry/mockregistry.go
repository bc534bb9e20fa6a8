// Package mockregistry provides a testify-based mock of the registry
// operations consumed by the router package.
package mockregistry

import (
	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/registrar/internal/registry"
)

// RegistryMock is a testify mock implementing every registry method
// used by the HTTP handlers.
type RegistryMock struct {
	mock.Mock

	// OnStats, if set, replaces the testify handler for Stats.
	OnStats func() registry.Stats
}

func (m *RegistryMock) List(userKey string) []registry.NodeEntry {
	args := m.Called(userKey)
	nodes, _ := args.Get(0).([]registry.NodeEntry)
	return nodes
}

func (m *RegistryMock) Upsert(userKey, nodeID, url string) {
	m.Called(userKey, nodeID, url)
}

func (m *RegistryMock) Delete(userKey, nodeID string) {
	m.Called(userKey, nodeID)
}

func (m *RegistryMock) Users() []string {
	args := m.Called()
	users, _ := args.Get(0).([]string)
	return users
}

func (m *RegistryMock) Stats() registry.Stats {
	if m.OnStats != nil {
		return m.OnStats()
	}
	args := m.Called()
	return args.Get(0).(registry.Stats)
}

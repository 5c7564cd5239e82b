// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds the live sessions for the web surface, keyed by
// session ID. Sessions live in memory for the lifetime of the process;
// nothing is persisted.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	systemPrompt string
}

// NewManager creates a manager whose sessions are seeded with the
// given system prompt.
func NewManager(systemPrompt string) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
	}
}

// GetOrCreate returns the session with the given ID, creating it if
// needed. An empty ID allocates a fresh UUID so every browser tab can
// get its own conversation.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock; another request may have won.
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = New(id, m.systemPrompt)
	m.sessions[id] = s
	return s
}

// Clear resets the session with the given ID. Unknown IDs succeed
// silently; clearing a conversation that never started is still a
// fresh conversation.
func (m *Manager) Clear(id string) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.Clear()
	}
}

// Remove drops a session from the manager.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

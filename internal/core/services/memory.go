package services

import (
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
)

// ConversationMemory holds the chat transcript for the current session.
// It is in-memory only: a restart starts a fresh conversation. Safe for
// concurrent use.
type ConversationMemory struct {
	mu    sync.RWMutex
	turns []domain.ConversationTurn
}

// NewConversationMemory creates an empty transcript.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

// Append adds one turn to the end of the transcript.
func (m *ConversationMemory) Append(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, domain.ConversationTurn{Role: role, Content: content})
}

// Turns returns a copy of the transcript in order.
func (m *ConversationMemory) Turns() []domain.ConversationTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of turns.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Reset clears the transcript.
func (m *ConversationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

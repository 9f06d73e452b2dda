package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openriskhq/decisionguide/internal/engine"
)

// Session tracks one interactive assessment: the answers given so far and the
// order nodes were answered in, for back navigation. All state is owned by
// this session; nothing is shared across sessions.
type Session struct {
	mu sync.Mutex

	ID     string
	TreeID string

	answers     *engine.AnswerSet
	nodeHistory []string

	recorded  bool
	CreatedAt time.Time
	updatedAt time.Time
}

// Answer records a choice for a node and remembers the node for back
// navigation. Re-answering a node updates the choice without duplicating the
// history entry.
func (s *Session) Answer(nodeID, choice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.answers.Get(nodeID); !exists {
		s.nodeHistory = append(s.nodeHistory, nodeID)
	}
	s.answers.Set(nodeID, choice)
	s.updatedAt = time.Now()
}

// Back removes the most recently answered node and its answer. It returns the
// removed node id, or "" when there is nothing to undo.
func (s *Session) Back() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.nodeHistory) == 0 {
		return ""
	}
	last := s.nodeHistory[len(s.nodeHistory)-1]
	s.nodeHistory = s.nodeHistory[:len(s.nodeHistory)-1]
	s.answers.Remove(last)
	s.recorded = false
	s.updatedAt = time.Now()
	return last
}

// Reset clears all answers and navigation history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers.Clear()
	s.nodeHistory = nil
	s.recorded = false
	s.updatedAt = time.Now()
}

// Answers returns an independent copy of the session's answer set.
func (s *Session) Answers() *engine.AnswerSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Steps returns the count of answered nodes.
func (s *Session) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodeHistory)
}

// MarkRecorded flips the recorded flag, returning true exactly once per
// completed assessment so history is written a single time.
func (s *Session) MarkRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorded {
		return false
	}
	s.recorded = true
	return true
}

// Touch refreshes the idle timer.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
}

// Store is a thread-safe in-memory session registry with idle eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore creates a Store that evicts sessions idle longer than ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for the given tree.
func (s *Store) Create(treeID string) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		TreeID:    treeID,
		answers:   engine.NewAnswerSet(),
		CreatedAt: now,
		updatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given id, or nil.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup evicts sessions idle longer than the store TTL.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.updatedAt)
		sess.mu.Unlock()
		if idle > s.ttl {
			delete(s.sessions, id)
		}
	}
}

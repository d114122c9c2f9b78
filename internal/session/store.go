package session

import (
	"sync"
	"time"

	"github.com/example/drillbot/pkg/monitoring"
)

// Store keeps one session per chat in memory
type Store struct {
	mu          sync.Mutex
	sessions    map[int64]*Session
	defaultUser string
	now         func() time.Time
}

// NewStore creates an empty store. New sessions start with defaultUser.
func NewStore(defaultUser string) *Store {
	return &Store{
		sessions:    make(map[int64]*Session),
		defaultUser: defaultUser,
		now:         time.Now,
	}
}

// Get returns the chat's session, creating it on first use, and marks it seen
func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	s, ok := st.sessions[chatID]
	if !ok {
		s = New(chatID, st.defaultUser, now)
		st.sessions[chatID] = s
		monitoring.ActiveSessions.Set(float64(len(st.sessions)))
		return s
	}
	s.LastSeen = now
	return s
}

// Touch marks the session seen without creating it
func (st *Store) Touch(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[chatID]; ok {
		s.LastSeen = st.now()
	}
}

// Drop ends the chat's session along with any exam attempt it holds
func (st *Store) Drop(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
	monitoring.ActiveSessions.Set(float64(len(st.sessions)))
}

// Len is the number of live sessions
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// SweepIdle drops sessions not seen for ttl and returns how many went.
// Attempts in dropped sessions are discarded, never graded.
func (st *Store) SweepIdle(now time.Time, ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	dropped := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen) >= ttl {
			delete(st.sessions, id)
			dropped++
		}
	}
	monitoring.ActiveSessions.Set(float64(len(st.sessions)))
	return dropped
}

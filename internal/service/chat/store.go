package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	chatmodel "github.com/soignetech/itsupport-chatbot/internal/model/chat"
)

// Store owns every live session. Expiry is anchored to creation time:
// sessions are inserted once with the TTL and afterwards mutated in place, so
// activity never extends their lifetime. There is no background janitor; the
// orchestrator sweeps opportunistically before each request.
type Store struct {
	cache    *cache.Cache
	maxTurns int
	log      *zap.Logger
}

// NewStore builds a session store. maxTurns caps the number of user/assistant
// exchanges retained per session (stored history holds twice that many turns).
func NewStore(ttl time.Duration, maxTurns int, log *zap.Logger) *Store {
	// Cleanup interval 0 disables go-cache's janitor goroutine; eviction
	// happens only through SweepExpired on the request path.
	return &Store{
		cache:    cache.New(ttl, 0),
		maxTurns: maxTurns,
		log:      log,
	}
}

// GetOrCreate resolves id to its live session, or allocates a fresh session
// under a new unguessable identifier when id is empty or unknown.
func (s *Store) GetOrCreate(id string) *chatmodel.Session {
	if id != "" {
		if found, ok := s.cache.Get(id); ok {
			return found.(*chatmodel.Session)
		}
	}

	session := &chatmodel.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	s.cache.Set(session.ID, session, cache.DefaultExpiration)
	s.log.Info("new session created", zap.String("session_id", session.ID))
	return session
}

// SweepExpired drops every session past its TTL. Safe to run concurrently
// with lookups: a request already holding a session pointer keeps a fully
// intact session even if the sweep removes it from the map.
func (s *Store) SweepExpired() {
	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	if removed := before - s.cache.ItemCount(); removed > 0 {
		s.log.Info("expired sessions cleaned", zap.Int("count", removed))
	}
}

// Reset deletes the session and reports whether it existed.
func (s *Store) Reset(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	s.log.Info("session reset", zap.String("session_id", id))
	return true
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// IsDuplicate reports whether question repeats the session's previous
// submission within the rate-limit window. Caller must hold the session lock.
func (s *Store) IsDuplicate(session *chatmodel.Session, question string, now time.Time, window time.Duration) bool {
	if session.LastQuestion != question || session.LastQuestionAt.IsZero() {
		return false
	}
	return now.Sub(session.LastQuestionAt) < window
}

// RecordTurn appends the completed exchange, slides the history window and
// stamps the duplicate-detection state. Caller must hold the session lock.
func (s *Store) RecordTurn(session *chatmodel.Session, question, answer string, now time.Time) {
	session.History = append(session.History,
		chatmodel.Turn{Role: chatmodel.RoleUser, Content: question},
		chatmodel.Turn{Role: chatmodel.RoleAssistant, Content: answer},
	)
	if limit := s.maxTurns * 2; len(session.History) > limit {
		session.History = session.History[len(session.History)-limit:]
	}
	session.LastQuestion = question
	session.LastQuestionAt = now
}

package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultTTL is how long an untouched session is kept
const DefaultTTL = 24 * time.Hour

// Store keeps one session per user
type Store interface {
	// Get returns a copy of the user's session
	Get(userID int64) (*Session, bool)

	// Put stores a copy of s and refreshes its expiration
	Put(userID int64, s *Session)

	// Remove drops the user's session
	Remove(userID int64)

	// Lock serializes work on one user's session; call the returned func to release it
	Lock(userID int64) (unlock func())

	// Len returns the number of live sessions
	Len() int
}

// MemoryStore is an in-memory Store with sliding expiration
type MemoryStore struct {
	cache  *cache.Cache
	logger *zap.Logger

	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryStore creates a store whose sessions expire ttl after their last Put
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cleanup := ttl / 4
	if cleanup < time.Second {
		cleanup = time.Second
	}

	s := &MemoryStore{
		cache:  cache.New(ttl, cleanup),
		logger: logger.With(zap.String("component", "session.store")),
		locks:  make(map[int64]*userLock),
	}
	s.cache.OnEvicted(func(key string, _ interface{}) {
		s.logger.Debug("Session evicted", zap.String("user_id", key))
	})
	return s
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns a copy of the user's session
func (s *MemoryStore) Get(userID int64) (*Session, bool) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Put stores a copy of sess
func (s *MemoryStore) Put(userID int64, sess *Session) {
	if sess == nil {
		s.Remove(userID)
		return
	}
	s.cache.Set(key(userID), sess.Clone(), cache.DefaultExpiration)
}

// Remove drops the user's session
func (s *MemoryStore) Remove(userID int64) {
	s.cache.Delete(key(userID))
}

// Len returns the number of stored sessions, including expired ones not yet cleaned up
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

// Lock acquires the user's mutex. Entries are reference counted and dropped
// once no goroutine holds or waits for them.
func (s *MemoryStore) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, userID)
			}
			s.mu.Unlock()
		})
	}
}

// lockCount returns the size of the lock table
func (s *MemoryStore) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

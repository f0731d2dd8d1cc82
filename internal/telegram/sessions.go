package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/booking"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/cache"
)

const sessionPrefix = "bot:session:"

// SessionStore keeps one booking.Session per chat. Load never returns nil;
// an unknown or expired chat gets a fresh session.
type SessionStore interface {
	Load(ctx context.Context, chatID string) (*booking.Session, error)
	Save(ctx context.Context, s *booking.Session) error
}

type memoryEntry struct {
	session booking.Session
	expires time.Time
}

// MemoryStore is the single-process store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context, chatID string) (*booking.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[chatID]
	if !ok || (m.ttl > 0 && m.now().After(e.expires)) {
		delete(m.items, chatID)
		return booking.NewSession(chatID), nil
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *booking.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ChatID] = memoryEntry{session: *s, expires: m.now().Add(m.ttl)}
	return nil
}

// CacheStore keeps sessions as JSON in a shared cache, so a restart or a
// second bot replica picks the conversation up where it was.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (c *CacheStore) Load(ctx context.Context, chatID string) (*booking.Session, error) {
	var s booking.Session
	ok, err := cache.GetJSON(ctx, c.cache, sessionPrefix+chatID, &s)
	switch {
	case errors.Is(err, cache.ErrDecode):
		return booking.NewSession(chatID), nil
	case err != nil:
		return nil, fmt.Errorf("telegram: load session: %w", err)
	case !ok || s.ChatID != chatID:
		return booking.NewSession(chatID), nil
	}
	return &s, nil
}

func (c *CacheStore) Save(ctx context.Context, s *booking.Session) error {
	if err := cache.SetJSON(ctx, c.cache, sessionPrefix+s.ChatID, s, c.ttl); err != nil {
		return fmt.Errorf("telegram: save session: %w", err)
	}
	return nil
}

package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

const (
	sessionCookie      = "camping_booking"
	defaultMaxSessions = 10000
)

// Sessions owns one booking widget per visitor. The cookie only carries a
// signed, encrypted session id. A session starts on the first request that
// changes booking state; widgets idle for longer than ttl are dropped, and
// past the limit the least recently seen session is evicted.
type Sessions struct {
	sc        *securecookie.SecureCookie
	newWidget func() *widget.Widget
	ttl       time.Duration
	limit     int
	now       func() time.Time

	mu        sync.Mutex
	entries   map[string]*sessionEntry
	lastPrune time.Time
}

type sessionEntry struct {
	widget *widget.Widget
	seen   time.Time
}

func NewSessions(hashKey, blockKey []byte, ttl time.Duration, newWidget func() *widget.Widget) *Sessions {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(ttl.Seconds()))
	return &Sessions{
		sc:        sc,
		newWidget: newWidget,
		ttl:       ttl,
		limit:     defaultMaxSessions,
		now:       time.Now,
		entries:   map[string]*sessionEntry{},
	}
}

// SetLimit caps the number of live sessions. Non-positive n keeps the default.
func (s *Sessions) SetLimit(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = n
}

// Lookup returns the visitor's widget for read-only requests. Visitors
// without a live session get a blank widget that is not kept.
func (s *Sessions) Lookup(r *http.Request) *widget.Widget {
	id, ok := s.sessionID(r)
	if ok {
		s.mu.Lock()
		e, found := s.entries[id]
		if found {
			e.seen = s.now()
		}
		s.mu.Unlock()
		if found {
			return e.widget
		}
	}
	return s.newWidget()
}

// Widget returns the visitor's widget, starting a new session when the
// cookie is missing, invalid or refers to an evicted session.
func (s *Sessions) Widget(w http.ResponseWriter, r *http.Request) *widget.Widget {
	id, _ := s.sessionID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if e, ok := s.entries[id]; ok {
		e.seen = now
		return e.widget
	}

	if len(s.entries) >= s.limit {
		s.evictOldestLocked()
	}

	id = uuid.NewString()
	e := &sessionEntry{widget: s.newWidget(), seen: now}
	s.entries[id] = e
	if encoded, err := s.sc.Encode(sessionCookie, id); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    encoded,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	return e.widget
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	var id string
	if err := s.sc.Decode(sessionCookie, c.Value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (s *Sessions) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < s.ttl/4 {
		return
	}
	s.lastPrune = now
	for id, e := range s.entries {
		if now.Sub(e.seen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func (s *Sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.seen.Before(oldest) {
			oldestID, oldest = id, e.seen
		}
	}
	delete(s.entries, oldestID)
}

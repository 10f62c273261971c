package api

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionHeader = "X-Session-Token"

// Session is one engine instance serving one principal.
type Session interface {
	Register(ctx context.Context, username, password string, initialBalance int64) error
	Login(ctx context.Context, username, password string) error
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	Book(ctx context.Context, index int) (int64, error)
	Pay(ctx context.Context, reservationID int64) (int64, error)
	Cancel(ctx context.Context, reservationID int64) (*domain.CancelReceipt, error)
	ListReservations(ctx context.Context) ([]domain.Booking, error)
	Username() string
}

// Sessions maps client tokens to their sessions. Sessions idle longer than
// the idle timeout are dropped, and when the registry is full the least
// recently used one is evicted.
type Sessions struct {
	mu          sync.Mutex
	byToken     map[string]*sessionEntry
	newFn       func() Session
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
}

type sessionEntry struct {
	session  Session
	lastUsed time.Time
}

type SessionsOption func(*Sessions)

// WithIdleTimeout expires sessions not used for d. Zero disables expiry.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		s.idleTimeout = d
	}
}

// WithMaxSessions caps the registry size. Zero means no cap.
func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) {
		s.maxSessions = n
	}
}

func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		s.now = now
	}
}

func NewSessions(newFn func() Session, opts ...SessionsOption) *Sessions {
	s := &Sessions{byToken: make(map[string]*sessionEntry), newFn: newFn, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New returns a session that is not yet reachable by token.
func (s *Sessions) New() Session {
	return s.newFn()
}

// Add makes session reachable and returns its token.
func (s *Sessions) Add(session Session) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if s.maxSessions > 0 && len(s.byToken) >= s.maxSessions {
		s.evictOldest()
	}
	s.byToken[token] = &sessionEntry{session: session, lastUsed: now}
	return token
}

// Get returns the session behind token and marks it used.
func (s *Sessions) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byToken[token]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.byToken, token)
		return nil, false
	}
	entry.lastUsed = now
	return entry.session, true
}

func (s *Sessions) Remove(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

// Len counts live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.byToken)
}

func (s *Sessions) expired(entry *sessionEntry, now time.Time) bool {
	return s.idleTimeout > 0 && now.Sub(entry.lastUsed) > s.idleTimeout
}

func (s *Sessions) sweep(now time.Time) {
	if s.idleTimeout <= 0 {
		return
	}
	for token, entry := range s.byToken {
		if s.expired(entry, now) {
			delete(s.byToken, token)
		}
	}
}

func (s *Sessions) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for token, entry := range s.byToken {
		if oldest == "" || entry.lastUsed.Before(at) {
			oldest, at = token, entry.lastUsed
		}
	}
	delete(s.byToken, oldest)
}

// fromRequest resolves the session named by the request header. A missing
// or unknown token is reported as not logged in.
func (s *Sessions) fromRequest(c *gin.Context) (Session, error) {
	session, ok := s.Get(c.GetHeader(SessionHeader))
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return session, nil
}

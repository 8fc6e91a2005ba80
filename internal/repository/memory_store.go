package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/model"
)

// MemoryStore is a Store kept in process memory.  It backs the tests and
// DB_DRIVER=memory for local runs.  A transaction holds the store lock
// for its whole duration and restores a snapshot when it fails, which
// gives it the same all-or-nothing behaviour as the SQL store.
type MemoryStore struct {
	mu    sync.Mutex
	st    *memState
	clock clock.Clock
}

type memState struct {
	seq           uint64
	venues        map[uint64]model.Venue
	users         map[uint64]model.User
	requests      map[uint64]model.Request
	notifications map[uint64]model.Notification
	reports       map[uint64]model.Report
	contacts      map[uint64]model.ContactMessage
	tokens        map[string]model.RefreshToken
}

func newMemState() *memState {
	return &memState{
		venues:        map[uint64]model.Venue{},
		users:         map[uint64]model.User{},
		requests:      map[uint64]model.Request{},
		notifications: map[uint64]model.Notification{},
		reports:       map[uint64]model.Report{},
		contacts:      map[uint64]model.ContactMessage{},
		tokens:        map[string]model.RefreshToken{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.seq = s.seq
	for k, v := range s.venues {
		c.venues[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

func (s *memState) nextID() uint64 {
	s.seq++
	return s.seq
}

// NewMemoryStore returns an empty store.  clk stamps rows created
// without a timestamp and checks token expiry; nil means the real clock.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryStore{st: newMemState(), clock: clk}
}

func (s *MemoryStore) repos(inTx bool) memRepos { return memRepos{s: s, inTx: inTx} }

func (s *MemoryStore) Venues() VenueRepository               { return memVenues{s.repos(false)} }
func (s *MemoryStore) Users() UserRepository                 { return memUsers{s.repos(false)} }
func (s *MemoryStore) Requests() RequestRepository           { return memRequests{s.repos(false)} }
func (s *MemoryStore) Notifications() NotificationRepository { return memNotifications{s.repos(false)} }
func (s *MemoryStore) Reports() ReportRepository             { return memReports{s.repos(false)} }
func (s *MemoryStore) Contacts() ContactRepository           { return memContacts{s.repos(false)} }
func (s *MemoryStore) Tokens() TokenRepository               { return memTokens{s.repos(false)} }

// InTx serialises fn against every other access to the store.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(memTx{s.repos(true)}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// memRepos gives repositories access to the state, taking the store
// lock unless the caller already holds it inside InTx.
type memRepos struct {
	s    *MemoryStore
	inTx bool
}

func (r memRepos) do(fn func(st *memState) error) error {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn(r.s.st)
}

func (r memRepos) now() time.Time { return r.s.clock.Now() }

type memTx struct{ r memRepos }

func (t memTx) Venues() VenueRepository               { return memVenues{t.r} }
func (t memTx) Users() UserRepository                 { return memUsers{t.r} }
func (t memTx) Requests() RequestRepository           { return memRequests{t.r} }
func (t memTx) Notifications() NotificationRepository { return memNotifications{t.r} }
func (t memTx) Reports() ReportRepository             { return memReports{t.r} }
func (t memTx) Contacts() ContactRepository           { return memContacts{t.r} }
func (t memTx) Tokens() TokenRepository               { return memTokens{t.r} }

// newestFirst orders by creation time then id, both descending.
func newestFirst(at func(i int) (time.Time, uint64)) func(i, j int) bool {
	return func(i, j int) bool {
		ti, ii := at(i)
		tj, ij := at(j)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	}
}

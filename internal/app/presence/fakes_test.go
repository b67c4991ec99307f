package presence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type emitted struct {
	event string
	data  any
}

type fakeHandle struct {
	id string

	mu     sync.Mutex
	events []emitted
	err    error
}

func newHandle(id string) *fakeHandle {
	return &fakeHandle{id: id}
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Emit(event string, data any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	h.events = append(h.events, emitted{event: event, data: data})
	return nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []emitted
}

func (b *fakeBroadcaster) Broadcast(event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, emitted{event: event, data: data})
}

func (b *fakeBroadcaster) count(event string, data any) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, e := range b.events {
		if e.event == event && e.data == data {
			n++
		}
	}
	return n
}

func (b *fakeBroadcaster) all() []emitted {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]emitted(nil), b.events...)
}

type presenceWrite struct {
	userID string
	online bool
	at     time.Time
}

type fakeStore struct {
	mu      sync.Mutex
	online  map[string]bool
	writes  []presenceWrite
	failSet error
	failGet error

	// afterSet runs after every successful write, outside the lock.
	afterSet func(userID string, online bool)
}

func newFakeStore() *fakeStore {
	return &fakeStore{online: make(map[string]bool)}
}

func (s *fakeStore) SetPresence(_ context.Context, userID string, online bool, at time.Time) error {
	s.mu.Lock()

	if s.failSet != nil {
		s.mu.Unlock()
		return s.failSet
	}
	s.online[userID] = online
	s.writes = append(s.writes, presenceWrite{userID: userID, online: online, at: at})
	afterSet := s.afterSet
	s.mu.Unlock()

	if afterSet != nil {
		afterSet(userID, online)
	}
	return nil
}

func (s *fakeStore) ListOnlineIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGet != nil {
		return nil, s.failGet
	}

	ids := []string{}
	for id, online := range s.online {
		if online {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) isOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.online[userID]
}

type fakeMirror struct {
	mu    sync.Mutex
	syncs [][]string
	err   error
}

func (m *fakeMirror) Sync(_ context.Context, online []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.syncs = append(m.syncs, append([]string(nil), online...))
	return m.err
}

func (m *fakeMirror) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.syncs)
}

func (m *fakeMirror) last() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.syncs) == 0 {
		return nil
	}
	return m.syncs[len(m.syncs)-1]
}

var errStoreDown = errors.New("store down")

package handler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"callchat/internal/app/message"
	"callchat/internal/app/storage"
	"callchat/internal/app/user"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*user.User
	order []uuid.UUID
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[uuid.UUID]*user.User)}
}

func (s *memoryUsers) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return user.ErrAlreadyExists
		}
	}

	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	u.LastActive = u.CreatedAt
	if u.Role == "" {
		u.Role = "User"
	}
	if u.Status == "" {
		u.Status = "Available"
	}

	stored := *u
	s.byID[u.ID] = &stored
	s.order = append(s.order, u.ID)
	return nil
}

func (s *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memoryUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memoryUsers) ListContacts(_ context.Context, excludeID uuid.UUID) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*user.User
	for _, id := range s.order {
		if id == excludeID {
			continue
		}
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryUsers) UpdateProfile(_ context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.ProfilePicture != "" {
		u.ProfilePicture = upd.ProfilePicture
	}
	if upd.Status != "" {
		u.Status = upd.Status
	}
	cp := *u
	return &cp, nil
}

func (s *memoryUsers) SetPresence(_ context.Context, userID string, online bool, at time.Time) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return user.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.IsOnline = online
	u.LastActive = at
	return nil
}

func (s *memoryUsers) ListOnlineIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []string{}
	for id, u := range s.byID {
		if u.IsOnline {
			ids = append(ids, id.String())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memoryMessages struct {
	mu   sync.Mutex
	list []message.Message
	err  error
}

func (s *memoryMessages) Create(_ context.Context, m *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	m.ID = uuid.New()
	m.Kind = message.KindOf(m.Content)
	m.CreatedAt = time.Now()
	s.list = append(s.list, *m)
	return nil
}

func (s *memoryMessages) ListConversation(_ context.Context, a, b uuid.UUID) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []message.Message
	for _, m := range s.list {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string]storage.ObjectInfo
	deleted  []string
	failSign bool
}

const fakePublicBase = "https://cdn.example"

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storage.ObjectInfo)}
}

func (s *fakeStorage) PresignUpload(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	if s.failSign {
		return "", errors.New("s3 unavailable")
	}
	return "https://s3.example/bucket/" + key + "?X-Amz-Signature=abc", nil
}

func (s *fakeStorage) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return info, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return fakePublicBase + "/" + key
}

func (s *fakeStorage) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, fakePublicBase+"/")
	return key, ok && key != ""
}

func (s *fakeStorage) put(key string, info storage.ObjectInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = info
}

type fakeMirrorReader struct {
	members []string
	err     error
}

func (m *fakeMirrorReader) Members(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members, nil
}

package handler

import (
	"context"

	"github.com/google/uuid"

	"callchat/internal/app/chat"
	"callchat/internal/app/message"
	"callchat/internal/app/storage"
	"callchat/internal/app/user"
	"callchat/internal/configs"
)

// UserStore is the user persistence the handlers need.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ListContacts(ctx context.Context, excludeID uuid.UUID) ([]*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error)
}

// MessageStore is the message persistence the handlers need.
type MessageStore interface {
	Create(ctx context.Context, m *message.Message) error
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]message.Message, error)
}

// Presence is the live registry as seen by the HTTP layer.
type Presence interface {
	chat.Presence
	IsOnline(userID string) bool
}

// MirrorReader reads the online set other processes see.
type MirrorReader interface {
	Members(ctx context.Context) ([]string, error)
}

// AppDeps bundles everything the handlers depend on.
type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *chat.Hub
	Presence Presence
	Relay    chat.Relayer
	Users    UserStore
	Messages MessageStore

	// Storage is nil when no bucket is configured.
	Storage storage.StorageService

	// Mirror is nil when no Redis is configured.
	Mirror MirrorReader
}

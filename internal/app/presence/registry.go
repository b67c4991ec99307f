/*
Package presence tracks which users currently hold a live connection.

The Registry maps a user ID to the connection handle that receives that user's
real-time events. It mirrors connect and disconnect into the persisted online flag
and announces them to every connected party. A periodic reconciliation sweep
corrects persisted flags left online by connections that vanished without a
clean disconnect.
*/
package presence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"callchat/internal/pkg/logx"
)

// Server-to-client presence events.
const (
	EventUserOnline  = "userOnline"
	EventUserOffline = "userOffline"
)

// DefaultReconcileInterval is the period of the reconciliation sweep.
const DefaultReconcileInterval = 30 * time.Second

// storeTimeout bounds each persistence call made on behalf of a connection event.
const storeTimeout = 5 * time.Second

// ErrEmptyUserID is returned by Announce for a blank user ID.
var ErrEmptyUserID = errors.New("presence: empty user id")

// Handle is one live duplex connection.
type Handle interface {
	// ID uniquely identifies the connection for its lifetime.
	ID() string

	// Emit queues an event for delivery without blocking.
	Emit(event string, data any) error
}

// Broadcaster delivers an event to every connected handle.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// UserStore is the persisted side of presence.
type UserStore interface {
	SetPresence(ctx context.Context, userID string, online bool, lastActive time.Time) error
	ListOnlineIDs(ctx context.Context) ([]string, error)
}

// Mirror receives the full online set after every change and on every
// reconcile sweep. Errors are advisory.
type Mirror interface {
	Sync(ctx context.Context, online []string) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithMirror attaches a best-effort mirror of the online set.
func WithMirror(m Mirror) Option {
	return func(r *Registry) { r.mirror = m }
}

// WithClock overrides the time source used for lastActive timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry holds at most one handle per user ID. The latest Announce for a user
// wins; the displaced handle stays connected but no longer receives that user's events.
type Registry struct {
	mu sync.RWMutex

	// users maps user ID to the handle currently receiving that user's events.
	users map[string]Handle

	// owners maps handle ID to the user ID the handle announced.
	owners map[string]string

	store       UserStore
	broadcaster Broadcaster
	mirror      Mirror
	now         func() time.Time

	// mirrorMu orders mirror syncs so a later snapshot is never overwritten by an earlier one.
	mirrorMu sync.Mutex

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewRegistry creates an empty registry persisting through store and announcing through b.
func NewRegistry(store UserStore, b Broadcaster, opts ...Option) *Registry {
	r := &Registry{
		users:       make(map[string]Handle),
		owners:      make(map[string]string),
		store:       store,
		broadcaster: b,
		now:         time.Now,
		logger:      logx.Component("presence"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Announce binds userID to h, marks the user online in storage and broadcasts
// userOnline. If h was bound to a different user, that binding is released first.
func (r *Registry) Announce(ctx context.Context, userID string, h Handle) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	r.mu.Lock()
	previousUser, hadPrevious := r.owners[h.ID()]
	releasedPrevious := false
	if hadPrevious && previousUser != userID {
		releasedPrevious = r.unbindLocked(previousUser, h)
	}

	displaced, wasBound := r.users[userID]
	r.users[userID] = h
	r.owners[h.ID()] = userID
	if wasBound && displaced.ID() != h.ID() {
		delete(r.owners, displaced.ID())
	}
	r.mu.Unlock()

	if releasedPrevious {
		r.markOffline(ctx, previousUser)
	}

	if wasBound && displaced.ID() != h.ID() {
		r.logger.Info().
			Str("user_id", userID).
			Str("displaced_conn", displaced.ID()).
			Str("conn_id", h.ID()).
			Msg("Newer connection replaced the delivery target for user.")
	}

	r.persist(ctx, userID, true)
	r.broadcaster.Broadcast(EventUserOnline, userID)
	r.syncMirror(ctx)

	r.logger.Info().Str("user_id", userID).Str("conn_id", h.ID()).Msg("User is now online.")
	return nil
}

// Lookup returns the handle currently bound to userID.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.users[userID]
	return h, ok
}

// userOf returns the user ID h announced, if it still owns that binding.
func (r *Registry) userOf(h Handle) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.owners[h.ID()]
	return userID, ok
}

// Remove drops the entry owned by h, marks the user offline in storage and
// broadcasts userOffline. A handle that never announced, or whose user has since
// been taken over by a newer connection, changes nothing.
func (r *Registry) Remove(ctx context.Context, h Handle) {
	r.mu.Lock()
	userID, ok := r.owners[h.ID()]
	removed := ok && r.unbindLocked(userID, h)
	r.mu.Unlock()

	if !removed {
		return
	}

	r.markOffline(ctx, userID)
}

// unbindLocked removes the binding of userID if it points at h.
// Callers must hold r.mu for writing.
func (r *Registry) unbindLocked(userID string, h Handle) bool {
	delete(r.owners, h.ID())

	current, ok := r.users[userID]
	if !ok || current.ID() != h.ID() {
		return false
	}

	delete(r.users, userID)
	return true
}

func (r *Registry) markOffline(ctx context.Context, userID string) {
	r.persist(ctx, userID, false)
	r.broadcaster.Broadcast(EventUserOffline, userID)
	r.syncMirror(ctx)

	r.logger.Info().Str("user_id", userID).Msg("User is now offline.")
}

// OnlineUserIDs returns a sorted snapshot of the user IDs with a live handle.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// IsOnline reports whether userID has a live handle.
func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// persist writes the online flag. Failures are logged and otherwise ignored so
// that presence bookkeeping never blocks delivery.
func (r *Registry) persist(ctx context.Context, userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if err := r.store.SetPresence(ctx, userID, online, r.now()); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Bool("online", online).
			Msg("Failed to persist presence.")
	}
}

func (r *Registry) syncMirror(ctx context.Context) {
	if r.mirror == nil {
		return
	}

	r.mirrorMu.Lock()
	defer r.mirrorMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if err := r.mirror.Sync(ctx, r.OnlineUserIDs()); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to mirror online users.")
	}
}

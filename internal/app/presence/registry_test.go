package presence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(opts ...Option) (*Registry, *fakeStore, *fakeBroadcaster) {
	store := newFakeStore()
	b := &fakeBroadcaster{}
	return NewRegistry(store, b, opts...), store, b
}

func TestRegistry_Announce_BindsAndBroadcasts(t *testing.T) {
	// ARRANGE
	r, store, b := newTestRegistry()
	h := newHandle("conn_a")

	// ACT
	err := r.Announce(context.Background(), "user-a", h)

	// ASSERT
	require.NoError(t, err)

	got, ok := r.Lookup("user-a")
	require.True(t, ok)
	assert.Equal(t, "conn_a", got.ID())
	assert.True(t, store.isOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOnline, "user-a"))
}

func TestRegistry_Announce_EmptyUserID(t *testing.T) {
	r, _, b := newTestRegistry()

	err := r.Announce(context.Background(), "", newHandle("conn_a"))

	assert.ErrorIs(t, err, ErrEmptyUserID)
	assert.Empty(t, b.all())
	assert.Empty(t, r.OnlineUserIDs())
}

func TestRegistry_Announce_SameHandleTwice(t *testing.T) {
	r, _, b := newTestRegistry()
	h := newHandle("conn_a")

	require.NoError(t, r.Announce(context.Background(), "user-a", h))
	require.NoError(t, r.Announce(context.Background(), "user-a", h))

	got, ok := r.Lookup("user-a")
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.Equal(t, 2, b.count(EventUserOnline, "user-a"))
	assert.Equal(t, 0, b.count(EventUserOffline, "user-a"))
}

func TestRegistry_Announce_LastWriteWins(t *testing.T) {
	// ARRANGE
	r, _, _ := newTestRegistry()
	first := newHandle("conn_first")
	second := newHandle("conn_second")

	// ACT
	require.NoError(t, r.Announce(context.Background(), "user-a", first))
	require.NoError(t, r.Announce(context.Background(), "user-a", second))

	// ASSERT
	got, ok := r.Lookup("user-a")
	require.True(t, ok)
	assert.Equal(t, "conn_second", got.ID())

	_, owned := r.userOf(first)
	assert.False(t, owned, "displaced handle must not own the binding anymore")
}

func TestRegistry_Remove_DisplacedHandleIsNoop(t *testing.T) {
	r, store, b := newTestRegistry()
	first := newHandle("conn_first")
	second := newHandle("conn_second")

	require.NoError(t, r.Announce(context.Background(), "user-a", first))
	require.NoError(t, r.Announce(context.Background(), "user-a", second))

	// ACT: the older connection drops after being replaced.
	r.Remove(context.Background(), first)

	// ASSERT
	got, ok := r.Lookup("user-a")
	require.True(t, ok)
	assert.Equal(t, "conn_second", got.ID())
	assert.True(t, store.isOnline("user-a"))
	assert.Equal(t, 0, b.count(EventUserOffline, "user-a"))
}

func TestRegistry_Remove_BroadcastsOfflineOnce(t *testing.T) {
	// ARRANGE
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, store, b := newTestRegistry(WithClock(func() time.Time { return now }))
	h := newHandle("conn_a")
	require.NoError(t, r.Announce(context.Background(), "user-a", h))

	// ACT
	r.Remove(context.Background(), h)
	r.Remove(context.Background(), h)

	// ASSERT
	_, ok := r.Lookup("user-a")
	assert.False(t, ok)
	assert.False(t, store.isOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOffline, "user-a"))

	last := store.writes[len(store.writes)-1]
	assert.Equal(t, presenceWrite{userID: "user-a", online: false, at: now}, last)
}

func TestRegistry_Remove_UnannouncedHandle(t *testing.T) {
	r, store, b := newTestRegistry()

	r.Remove(context.Background(), newHandle("conn_never"))

	assert.Empty(t, b.all())
	assert.Empty(t, store.writes)
}

func TestRegistry_Announce_SwitchUserReleasesPrevious(t *testing.T) {
	r, store, b := newTestRegistry()
	h := newHandle("conn_a")

	require.NoError(t, r.Announce(context.Background(), "user-a", h))
	require.NoError(t, r.Announce(context.Background(), "user-b", h))

	_, ok := r.Lookup("user-a")
	assert.False(t, ok)
	assert.False(t, store.isOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOffline, "user-a"))

	userID, ok := r.userOf(h)
	require.True(t, ok)
	assert.Equal(t, "user-b", userID)
	assert.Equal(t, []string{"user-b"}, r.OnlineUserIDs())
}

func TestRegistry_StoreFailuresAreSwallowed(t *testing.T) {
	// ARRANGE
	r, store, b := newTestRegistry()
	store.failSet = errStoreDown
	h := newHandle("conn_a")

	// ACT
	err := r.Announce(context.Background(), "user-a", h)

	// ASSERT: live presence and broadcasts proceed without storage.
	require.NoError(t, err)
	assert.True(t, r.IsOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOnline, "user-a"))

	r.Remove(context.Background(), h)
	assert.False(t, r.IsOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOffline, "user-a"))
}

func TestRegistry_CancelledContextStillPersists(t *testing.T) {
	r, store, _ := newTestRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Announce(ctx, "user-a", newHandle("conn_a")))

	assert.True(t, store.isOnline("user-a"))
}

func TestRegistry_MirrorFollowsOnlineSet(t *testing.T) {
	mirror := &fakeMirror{}
	r, _, _ := newTestRegistry(WithMirror(mirror))
	a := newHandle("conn_a")
	b := newHandle("conn_b")

	require.NoError(t, r.Announce(context.Background(), "user-b", b))
	require.NoError(t, r.Announce(context.Background(), "user-a", a))
	assert.Equal(t, []string{"user-a", "user-b"}, mirror.last())

	r.Remove(context.Background(), b)
	assert.Equal(t, []string{"user-a"}, mirror.last())
}

func TestRegistry_MirrorFailureIsSwallowed(t *testing.T) {
	mirror := &fakeMirror{err: errStoreDown}
	r, _, b := newTestRegistry(WithMirror(mirror))

	require.NoError(t, r.Announce(context.Background(), "user-a", newHandle("conn_a")))

	assert.True(t, r.IsOnline("user-a"))
	assert.Equal(t, 1, b.count(EventUserOnline, "user-a"))
}

func TestRegistry_ConcurrentAnnounceAndRemove(t *testing.T) {
	r, _, _ := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			h := newHandle(fmt.Sprintf("conn_%d", i))
			userID := fmt.Sprintf("user-%d", i%5)

			_ = r.Announce(context.Background(), userID, h)
			_, _ = r.Lookup(userID)
			r.Remove(context.Background(), h)
		}(i)
	}
	wg.Wait()

	// every handle removed itself or was displaced; nothing remains owned by a removed handle.
	for i := 0; i < 50; i++ {
		_, ok := r.userOf(newHandle(fmt.Sprintf("conn_%d", i)))
		assert.False(t, ok)
	}
	assert.Empty(t, r.OnlineUserIDs())
}

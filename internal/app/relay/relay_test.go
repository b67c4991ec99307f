package relay

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callchat/internal/app/presence"
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

func (h *fakeHandle) received() []emitted {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]emitted(nil), h.events...)
}

type fakeDirectory map[string]presence.Handle

func (d fakeDirectory) Lookup(userID string) (presence.Handle, bool) {
	h, ok := d[userID]
	return h, ok
}

func TestRelayMessage_DeliversPayloadVerbatim(t *testing.T) {
	// ARRANGE
	bob := &fakeHandle{id: "conn_bob"}
	r := New(fakeDirectory{"bob": bob})
	payload := json.RawMessage(`{"_id":"m1","receiverId":"bob","content":"hi"}`)

	// ACT
	ok := r.RelayMessage("alice", "bob", payload)

	// ASSERT
	require.True(t, ok)
	require.Len(t, bob.received(), 1)
	assert.Equal(t, EventReceiveMessage, bob.received()[0].event)
	assert.Equal(t, payload, bob.received()[0].data)
}

func TestRelay_AbsentTargetIsDropped(t *testing.T) {
	alice := &fakeHandle{id: "conn_alice"}
	r := New(fakeDirectory{"alice": alice})

	assert.False(t, r.RelayMessage("alice", "ghost", json.RawMessage(`{}`)))
	assert.False(t, r.RelayTyping("alice", "ghost"))
	assert.False(t, r.RelayStopTyping("alice", "ghost"))
	assert.False(t, r.RelayCallOffer("alice", "ghost", json.RawMessage(`{}`), true))
	assert.False(t, r.RelayCallAnswer("alice", "ghost", json.RawMessage(`{}`)))

	assert.Empty(t, alice.received(), "nothing is echoed back to the sender")
}

func TestRelayTyping_CarriesSenderID(t *testing.T) {
	bob := &fakeHandle{id: "conn_bob"}
	r := New(fakeDirectory{"bob": bob})

	require.True(t, r.RelayTyping("alice", "bob"))
	require.True(t, r.RelayStopTyping("alice", "bob"))

	assert.Equal(t, []emitted{
		{event: EventUserTyping, data: "alice"},
		{event: EventUserStoppedTyping, data: "alice"},
	}, bob.received())
}

func TestRelayCallOffer_Payload(t *testing.T) {
	bob := &fakeHandle{id: "conn_bob"}
	r := New(fakeDirectory{"bob": bob})
	signal := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)

	require.True(t, r.RelayCallOffer("alice", "bob", signal, true))

	require.Len(t, bob.received(), 1)
	got := bob.received()[0]
	assert.Equal(t, EventCallUser, got.event)
	assert.Equal(t, CallOffer{Signal: signal, From: "alice", IsVideo: true}, got.data)

	encoded, err := json.Marshal(got.data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"signal":{"type":"offer","sdp":"v=0"},"from":"alice","isVideo":true}`, string(encoded))
}

func TestRelay_CallRoundTrip(t *testing.T) {
	// ARRANGE: A calls B, B answers.
	a := &fakeHandle{id: "conn_a"}
	b := &fakeHandle{id: "conn_b"}
	r := New(fakeDirectory{"A": a, "B": b})
	offer := json.RawMessage(`"offer-sdp"`)
	answer := json.RawMessage(`"answer-sdp"`)

	// ACT
	require.True(t, r.RelayCallOffer("A", "B", offer, false))
	require.True(t, r.RelayCallAnswer("B", "A", answer))

	// ASSERT
	assert.Equal(t, []emitted{{event: EventCallUser, data: CallOffer{Signal: offer, From: "A"}}}, b.received())
	assert.Equal(t, []emitted{{event: EventCallAccepted, data: answer}}, a.received())
}

func TestRelay_EmitFailureReportsFalse(t *testing.T) {
	bob := &fakeHandle{id: "conn_bob", err: errors.New("queue full")}
	r := New(fakeDirectory{"bob": bob})

	assert.False(t, r.RelayTyping("alice", "bob"))
}

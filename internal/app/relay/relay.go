/*
Package relay forwards real-time events from one connected user to another.

The relay keeps no state of its own. Each call looks up the target in the
presence directory and queues at most one event on the target's handle. An
unreachable target is not an error: the event is dropped and the call reports
false. Nothing is retried and no failure is reported back to the sender.
*/
package relay

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"callchat/internal/app/presence"
	"callchat/internal/pkg/logx"
)

// Server-to-client relay events.
const (
	EventReceiveMessage    = "receiveMessage"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
	EventCallUser          = "callUser"
	EventCallAccepted      = "callAccepted"
)

// Directory resolves a user ID to its current connection handle.
type Directory interface {
	Lookup(userID string) (presence.Handle, bool)
}

// CallOffer is the payload delivered to the callee of an incoming call.
type CallOffer struct {
	Signal  json.RawMessage `json:"signal"`
	From    string          `json:"from"`
	IsVideo bool            `json:"isVideo"`
}

// Relay forwards events to handles found in a Directory.
type Relay struct {
	dir    Directory
	logger zerolog.Logger
}

// New returns a Relay reading targets from dir.
func New(dir Directory) *Relay {
	return &Relay{
		dir:    dir,
		logger: logx.Component("relay"),
	}
}

// RelayMessage delivers payload verbatim to receiverID as receiveMessage.
// The message has already been stored by the caller.
func (r *Relay) RelayMessage(senderID, receiverID string, payload json.RawMessage) bool {
	return r.deliver(EventReceiveMessage, senderID, receiverID, payload)
}

// RelayTyping tells toID that fromID started typing.
func (r *Relay) RelayTyping(fromID, toID string) bool {
	return r.deliver(EventUserTyping, fromID, toID, fromID)
}

// RelayStopTyping tells toID that fromID stopped typing.
func (r *Relay) RelayStopTyping(fromID, toID string) bool {
	return r.deliver(EventUserStoppedTyping, fromID, toID, fromID)
}

// RelayCallOffer delivers an incoming call from callerID to calleeID.
// signal is the caller's opaque session description.
func (r *Relay) RelayCallOffer(callerID, calleeID string, signal json.RawMessage, isVideo bool) bool {
	offer := CallOffer{
		Signal:  signal,
		From:    callerID,
		IsVideo: isVideo,
	}
	return r.deliver(EventCallUser, callerID, calleeID, offer)
}

// RelayCallAnswer delivers the callee's answer signal to callerID.
func (r *Relay) RelayCallAnswer(calleeID, callerID string, signal json.RawMessage) bool {
	return r.deliver(EventCallAccepted, calleeID, callerID, signal)
}

func (r *Relay) deliver(event, fromID, toID string, data any) bool {
	h, ok := r.dir.Lookup(toID)
	if !ok {
		r.logger.Debug().
			Str("event", event).
			Str("from", fromID).
			Str("to", toID).
			Msg("Target offline, event dropped.")
		return false
	}

	if err := h.Emit(event, data); err != nil {
		r.logger.Warn().
			Err(err).
			Str("event", event).
			Str("from", fromID).
			Str("to", toID).
			Str("conn_id", h.ID()).
			Msg("Failed to queue event for target.")
		return false
	}

	return true
}

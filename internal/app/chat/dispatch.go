package chat

import (
	"encoding/json"
	"strings"

	"callchat/internal/pkg/errs"
)

// handleMessage decodes one inbound frame and dispatches it. Malformed frames
// are logged and dropped; they never end the read loop.
func (c *Client) handleMessage(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Warn().Err(err).Int("size", len(message)).Msg("Client sent invalid JSON")
		c.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch env.Event {
	case EventLogin:
		c.handleLogin(env.Data)
	case EventSendMessage:
		c.handleSendMessage(env.Data)
	case EventTyping:
		c.handleTyping(env.Data, true)
	case EventStopTyping:
		c.handleTyping(env.Data, false)
	case EventCallUser:
		c.handleCallUser(env.Data)
	case EventAnswerCall:
		c.handleAnswerCall(env.Data)
	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// decode unmarshals data into dst, logging and reporting failures.
func (c *Client) decode(event string, data json.RawMessage, dst any) bool {
	if len(data) == 0 {
		c.logger.Warn().Str("event", event).Msg("Client sent event without data")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("event", event).Msg("Client sent malformed event data")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return false
	}

	return true
}

// rejectInvalid logs and reports an event whose data decoded but failed validation.
func (c *Client) rejectInvalid(event, reason string) {
	c.logger.Warn().Str("event", event).Str("reason", reason).Msg("Client sent invalid event data")
	c.sendError(errs.NewError(errs.ErrInvalidParams))
}

func (c *Client) handleLogin(data json.RawMessage) {
	var userID string
	if !c.decode(EventLogin, data, &userID) {
		return
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		c.rejectInvalid(EventLogin, "empty user id")
		return
	}

	if c.authUserID != "" && c.authUserID != userID {
		c.logger.Warn().Str("user_id", userID).Msg("Login for a user other than the token subject rejected")
		c.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	if c.authUserID == "" {
		c.logger.Warn().Str("user_id", userID).Msg("Unauthenticated socket announced a user")
	}

	if err := c.presence.Announce(c.ctx, userID, c); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("Announce failed")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	c.userID = userID
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload SendMessagePayload
	if !c.decode(EventSendMessage, data, &payload) {
		return
	}

	if payload.ReceiverID == "" {
		c.rejectInvalid(EventSendMessage, "missing receiverId")
		return
	}

	c.relay.RelayMessage(c.senderLabel(), payload.ReceiverID, data)
}

func (c *Client) handleTyping(data json.RawMessage, started bool) {
	event := EventStopTyping
	if started {
		event = EventTyping
	}

	var payload TypingPayload
	if !c.decode(event, data, &payload) {
		return
	}

	if payload.To == "" {
		c.rejectInvalid(event, "missing to")
		return
	}

	// the typing notification carries the sender's identity, so it needs one.
	if c.userID == "" {
		c.logger.Warn().Str("event", event).Msg("Typing event before login dropped")
		c.sendError(errs.NewError(errs.ErrNotAnnounced))
		return
	}

	if started {
		c.relay.RelayTyping(c.userID, payload.To)
	} else {
		c.relay.RelayStopTyping(c.userID, payload.To)
	}
}

func (c *Client) handleCallUser(data json.RawMessage) {
	var payload CallUserPayload
	if !c.decode(EventCallUser, data, &payload) {
		return
	}

	if payload.UserToCall == "" {
		c.rejectInvalid(EventCallUser, "missing userToCall")
		return
	}

	callerID := payload.From
	if callerID == "" {
		callerID = c.userID
	}

	if callerID == "" {
		c.rejectInvalid(EventCallUser, "caller unknown")
		return
	}

	if c.authUserID != "" && callerID != c.authUserID {
		c.logger.Warn().Str("from", callerID).Msg("Call offer on behalf of another user rejected")
		c.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	c.relay.RelayCallOffer(callerID, payload.UserToCall, payload.SignalData, payload.IsVideo)
}

func (c *Client) handleAnswerCall(data json.RawMessage) {
	var payload AnswerCallPayload
	if !c.decode(EventAnswerCall, data, &payload) {
		return
	}

	if payload.To == "" {
		c.rejectInvalid(EventAnswerCall, "missing to")
		return
	}

	c.relay.RelayCallAnswer(c.senderLabel(), payload.To, payload.Signal)
}

// senderLabel identifies this client in relay logs: the announced user if any,
// otherwise the connection ID. Call sockets are often never announced.
func (c *Client) senderLabel() string {
	if c.userID != "" {
		return c.userID
	}
	return c.id
}

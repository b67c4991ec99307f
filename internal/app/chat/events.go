package chat

import (
	"encoding/json"
)

// Client-to-server events.
const (
	EventLogin       = "login"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventCallUser    = "callUser"
	EventAnswerCall  = "answerCall"
)

// EventError is sent to a client whose event was rejected.
const EventError = "error"

// Envelope is the wire format of every WebSocket text frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outboundEnvelope is Envelope with data not yet encoded.
type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// SendMessagePayload is the part of a sendMessage event the server inspects.
// The full payload is forwarded verbatim.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
}

// TypingPayload is the payload of typing and stopTyping.
type TypingPayload struct {
	To string `json:"to"`
}

// CallUserPayload is the payload of callUser.
type CallUserPayload struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	IsVideo    bool            `json:"isVideo"`
}

// AnswerCallPayload is the payload of answerCall.
type AnswerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func encodeEnvelope(event string, data any) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Event: event, Data: data})
}

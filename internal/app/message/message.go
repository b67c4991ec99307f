/*
Package message stores direct messages between two users.

Messages are written here before the sender emits sendMessage on its socket;
the socket relay is only a real-time notification on top of this store.
*/
package message

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"callchat/internal/pkg/errs"
)

// MaxContentBytes is the maximum size of a message body.
const MaxContentBytes = 5000

// Kind classifies message content for rendering.
type Kind string

const (
	KindText    Kind = "text"
	KindSticker Kind = "sticker"
	KindGIF     Kind = "gif"
)

var (
	stickerPattern = regexp.MustCompile(`^\[sticker:(\d+)\]$`)
	gifPattern     = regexp.MustCompile(`^\[gif:(https?://[^\]\s]+)\]$`)
)

// Message is a row of the messages table.
type Message struct {
	ID         uuid.UUID `json:"_id"`
	SenderID   uuid.UUID `json:"sender"`
	ReceiverID uuid.UUID `json:"receiver"`
	Content    string    `json:"content"`
	Kind       Kind      `json:"kind"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// KindOf detects the kind of content. Stickers are encoded as "[sticker:<id>]",
// GIFs as "[gif:<url>]"; anything else is plain text.
func KindOf(content string) Kind {
	switch {
	case stickerPattern.MatchString(content):
		return KindSticker
	case gifPattern.MatchString(content):
		return KindGIF
	default:
		return KindText
	}
}

// Validate checks a message before it is stored.
func Validate(senderID, receiverID uuid.UUID, content string) *errs.CustomError {
	if receiverID == uuid.Nil || receiverID == senderID {
		return errs.NewError(errs.ErrReceiverInvalid)
	}

	if strings.TrimSpace(content) == "" {
		return errs.NewError(errs.ErrMessageContentEmpty)
	}

	if len(content) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	return nil
}

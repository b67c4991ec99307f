package message

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callchat/internal/pkg/errs"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		content string
		want    Kind
	}{
		{content: "hello", want: KindText},
		{content: "[sticker:12]", want: KindSticker},
		{content: "[sticker:abc]", want: KindText},
		{content: "[gif:https://media.example/cat.gif]", want: KindGIF},
		{content: "[gif:ftp://media.example/cat.gif]", want: KindText},
		{content: "see [sticker:1]", want: KindText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.content), "content %q", tt.content)
	}
}

func TestValidate(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	tests := []struct {
		name     string
		receiver uuid.UUID
		content  string
		code     int
	}{
		{name: "nil receiver", receiver: uuid.Nil, content: "hi", code: errs.ErrReceiverInvalid},
		{name: "self", receiver: alice, content: "hi", code: errs.ErrReceiverInvalid},
		{name: "blank", receiver: bob, content: "   ", code: errs.ErrMessageContentEmpty},
		{name: "too long", receiver: bob, content: strings.Repeat("x", MaxContentBytes+1), code: errs.ErrMessageContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customErr := Validate(alice, tt.receiver, tt.content)
			require.NotNil(t, customErr)
			assert.Equal(t, tt.code, customErr.Code)
		})
	}

	assert.Nil(t, Validate(alice, bob, strings.Repeat("x", MaxContentBytes)))
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"callchat/internal/app/message"
	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/req"
	"callchat/internal/pkg/resp"
)

type SendMessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// HandleSendMessage stores a message from the caller. Clients then emit
// sendMessage on their socket with the stored message to notify the receiver.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		receiverID, err := uuid.Parse(input.ReceiverID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrReceiverInvalid))
			return
		}

		if customErr := message.Validate(senderID, receiverID, input.Content); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Users.GetByID(r.Context(), receiverID); err != nil {
			respondUserError(w, r, err)
			return
		}

		m := &message.Message{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Content:    input.Content,
		}

		if err := deps.Messages.Create(r.Context(), m); err != nil {
			logx.Error(err, "Failed to store message", "sender_id", senderID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, m)
	}
}

// HandleGetConversation returns the caller's conversation with {userId}, oldest first.
func HandleGetConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		otherID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Messages.ListConversation(r.Context(), callerID, otherID)
		if err != nil {
			logx.Error(err, "Failed to load conversation", "user_id", callerID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if messages == nil {
			messages = []message.Message{}
		}

		resp.RespondSuccess(w, r, messages)
	}
}

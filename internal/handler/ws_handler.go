package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"callchat/internal/app/chat"
	"callchat/internal/pkg/auth/jwt"
	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/limiter"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and runs the client until it disconnects.
// Unless RequireSocketToken is set a token is optional: call sockets connect
// anonymously, and identity is established by the login event. A token that is
// present must be valid. ctx is the server context the client persists presence under.
func HandleWebSocket(ctx context.Context, deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		var authUserID string
		if token := jwt.TokenFromRequest(r); token != "" {
			payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
			if err != nil {
				logx.Warn("WebSocket connection rejected: invalid token.", "ip", logx.AnonymizeIP(ip))
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			authUserID = payload.UserID
		} else if deps.Config.RequireSocketToken {
			logx.Warn("WebSocket connection rejected: token required.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(ctx, conn, deps.Hub, deps.Presence, deps.Relay, authUserID)

		if !deps.Hub.Register(client) {
			logx.Info("WebSocket connection refused: server shutting down.")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", client.ID(), "auth_user_id", authUserID)

		client.ReadPump()
	}
}

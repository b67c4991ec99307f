/*
Package handler provides the HTTP routing and handlers of the chat server.

The REST API covers accounts, profiles, contacts and message history. The
WebSocket endpoint hands each upgraded connection to a chat.Client.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"callchat/internal/pkg/auth/jwt"
	"callchat/internal/pkg/limiter"
	"callchat/internal/pkg/logx"
)

const (
	AuthRate       = 0.2
	AuthBurst      = 5
	WebSocketRate  = 1
	WebSocketBurst = 10
)

// Router builds the HTTP routing table. ctx bounds the background work of the
// rate limiters and is the parent context of every WebSocket client.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(WebSocketRate), WebSocketBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
		})

		api.Group(func(private chi.Router) {
			private.Use(jwt.RequireAuth(deps.Config.JWTSecret))

			private.Route("/users", func(users chi.Router) {
				users.Get("/profile", HandleGetProfile(deps))
				users.Put("/profile", HandleUpdateProfile(deps))
				users.Get("/contacts", HandleListContacts(deps))
				users.Post("/avatar/presign", HandlePresignAvatar(deps))
			})

			private.Route("/messages", func(messages chi.Router) {
				messages.Post("/", HandleSendMessage(deps))
				messages.Get("/{userId}", HandleGetConversation(deps))
			})
		})
	})

	r.Get("/ws", HandleWebSocket(ctx, deps, wsUpgrader, wsLimiter))

	return r
}

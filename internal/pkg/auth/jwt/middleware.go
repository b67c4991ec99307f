package jwt

import (
	"context"
	"net/http"
	"strings"

	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/resp"
)

type contextKey string

// ContextAuthPayloadKey stores the verified *Payload in the request context.
const ContextAuthPayloadKey contextKey = "auth_payload"

// TokenFromRequest extracts a bearer token from the Authorization header, falling
// back to the "token" query parameter used by browser WebSocket clients.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return r.URL.Query().Get("token")
}

// RequireAuth rejects requests without a valid token with 401 and stores the
// verified payload in the context otherwise.
func RequireAuth(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Rejected request with invalid token", "path", r.URL.Path, "error", err.Error())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// WithPayload returns a copy of ctx carrying payload.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext returns the verified payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}

	return payload
}

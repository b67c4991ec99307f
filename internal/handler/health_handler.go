package handler

import (
	"context"
	"net/http"
	"time"

	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/resp"
)

const mirrorReadTimeout = 2 * time.Second

// HandleHealth reports liveness, the number of open sockets and, when a
// presence mirror is configured, how many users it currently publishes.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status":  "ok",
			"service": "callchat",
			"clients": deps.Hub.Len(),
		}

		if deps.Mirror != nil {
			ctx, cancel := context.WithTimeout(r.Context(), mirrorReadTimeout)
			defer cancel()

			members, err := deps.Mirror.Members(ctx)
			if err != nil {
				logx.Warn("Health check could not read presence mirror", "error", err.Error())
				body["mirror"] = "unavailable"
			} else {
				body["mirror"] = "ok"
				body["mirrored_online"] = len(members)
			}
		}

		resp.RespondSuccess(w, r, body)
	}
}

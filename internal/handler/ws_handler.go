package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pairup/internal/app/session"
	"pairup/internal/pkg/errs"
	"pairup/internal/pkg/limiter"
	"pairup/internal/pkg/logx"
	"pairup/internal/pkg/pow"
	"pairup/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and serves the connection until it closes.
// Requests are rate limited per IP and, when proof-of-work is enabled, must carry a
// fresh admission token.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if deps.Pow != nil && deps.Pow.Enabled() {
			token := pow.TokenFromRequest(r)
			if token == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
				return
			}
			if !deps.Pow.Redeem(token) {
				logx.Info("WebSocket connection rejected: Invalid admission token.")
				resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := session.NewClient(conn, deps.Hub)
		deps.Clients.Add(client)
		defer deps.Clients.Remove(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", client.ID)

		client.ReadPump()
	}
}

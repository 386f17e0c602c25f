package handler

import (
	"errors"
	"net/http"

	"pairup/internal/pkg/errs"
	"pairup/internal/pkg/logx"
	"pairup/internal/pkg/pow"
	"pairup/internal/pkg/req"
	"pairup/internal/pkg/resp"
)

// HandleHealth reports liveness.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "pairup",
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleStats returns the current hub snapshot.
func HandleStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Hub.Stats()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrMatchmakingUnavailable))
			return
		}

		data := struct {
			Connections int `json:"connections"`
			Users       int `json:"users"`
			Queued      int `json:"queued"`
			Rooms       int `json:"rooms"`
		}{
			Connections: deps.Clients.Len(),
			Users:       stats.Connections,
			Queued:      stats.Queued,
			Rooms:       stats.Rooms,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandlePowChallenge issues a proof-of-work nonce. With proof-of-work disabled it returns
// difficulty 0 and no nonce.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Pow == nil || !deps.Pow.Enabled() {
			resp.RespondSuccess(w, r, pow.Challenge{})
			return
		}

		resp.RespondSuccess(w, r, deps.Pow.NewChallenge())
	}
}

type powVerifyRequest struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

type powVerifyResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// HandlePowVerify exchanges a solved challenge for a single-use admission token.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Pow == nil || !deps.Pow.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var body powVerifyRequest
		if customErr := req.BindJSON(w, r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if body.Nonce == "" || body.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := deps.Pow.Verify(body.Nonce, body.Counter)
		if err != nil {
			if !errors.Is(err, pow.ErrProofInsufficient) && !errors.Is(err, pow.ErrNonceInvalid) {
				logx.Error(err, "Unexpected proof-of-work verification failure")
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, powVerifyResponse{
			Token:     token,
			ExpiresIn: int(pow.ProofTokenDuration.Seconds()),
		})
	}
}

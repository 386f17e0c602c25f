package handler

import (
	"pairup/internal/app/match"
	"pairup/internal/app/session"
	"pairup/internal/configs"
	"pairup/internal/pkg/pow"
)

type AppDeps struct {
	Hub     *match.Hub
	Clients *session.Pool
	Pow     *pow.Manager
	Config  *configs.AppConfig
}

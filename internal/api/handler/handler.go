package handler

import (
	"roll-call/config"
	"roll-call/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Roster *RosterHandler
	Board  *BoardHandler
	Roll   *RollHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Roster: NewRosterHandler(svc.Roster),
		Board:  NewBoardHandler(svc.Board, cfg.Server.CORS.AllowOrigins),
		Roll:   NewRollHandler(svc.Roll),
		Export: NewExportHandler(svc.Export),
	}
}

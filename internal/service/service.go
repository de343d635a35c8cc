package service

import (
	"go.uber.org/zap"

	"roll-call/config"
	"roll-call/internal/repository"
	"roll-call/pkg/jwt"
	"roll-call/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth   AuthService
	Roster RosterService
	Board  BoardService
	Roll   RollService
	Export ExportService
}

// NewService 创建 Service 聚合
// cache 与 blacklist 可为 nil（Redis 不可用时降级）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache BoardCache,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	roster := NewRosterService(repo, logger)
	board := NewBoardService(roster, cache, cfg.Board.SnapshotTTL, m, logger)

	return &Service{
		Auth:   NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Roster: roster,
		Board:  board,
		Roll:   NewRollService(repo, board, logger),
		Export: NewExportService(repo, logger),
	}
}

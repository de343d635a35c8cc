package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 定时任务
// 目前只有一个任务：按 board.reset_cron 清空全部看板，开始新一天的点名
type Scheduler struct {
	cron   *cron.Cron
	board  BoardService
	logger *zap.Logger
}

// NewScheduler 创建定时任务；spec 为空时不注册任务
func NewScheduler(spec string, board BoardService, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		board:  board,
		logger: logger,
	}
	if spec == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.resetBoards); err != nil {
		return nil, err
	}
	logger.Info("已注册看板每日重置任务", zap.String("cron", spec))
	return s, nil
}

func (s *Scheduler) resetBoards() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n := s.board.ResetAll(ctx)
	s.logger.Info("看板已每日重置", zap.Int("boards", n))
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

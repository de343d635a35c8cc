package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"roll-call/internal/repository"
	"roll-call/internal/roll"
)

// ── 名单模块业务错误 ──

var (
	ErrRosterUnavailable = errors.New("名单加载失败")
)

// RosterService 名单业务接口
type RosterService interface {
	// Fetch 读取完整名单，所有学生状态均为 unmark
	Fetch(ctx context.Context) ([]roll.Student, error)
	// Seed 生成随机名单；replace 为 true 时先清空现有学生
	Seed(ctx context.Context, count int, replace bool) ([]roll.Student, error)
	// EnsureSeeded 学生表为空时生成随机名单
	EnsureSeeded(ctx context.Context, count int) error
}

type rosterService struct {
	repo   *repository.Repository
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(repo *repository.Repository, logger *zap.Logger) RosterService {
	return &rosterService{
		repo:   repo,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ────────────────────── Fetch ──────────────────────

func (s *rosterService) Fetch(ctx context.Context) ([]roll.Student, error) {
	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("读取学生名单失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}

	result := make([]roll.Student, 0, len(students))
	for i := range students {
		result = append(result, students[i].ToRoll())
	}
	return result, nil
}

// ────────────────────── Seed ──────────────────────

func (s *rosterService) Seed(ctx context.Context, count int, replace bool) ([]roll.Student, error) {
	if replace {
		if err := s.repo.Student.DeleteAll(ctx); err != nil {
			s.logger.Error("清空学生名单失败", zap.Error(err))
			return nil, err
		}
	}

	s.mu.Lock()
	students := GenerateStudents(count, s.rng)
	s.mu.Unlock()

	if err := s.repo.Student.CreateBatch(ctx, students); err != nil {
		s.logger.Error("写入随机名单失败", zap.Int("count", count), zap.Error(err))
		return nil, err
	}

	s.logger.Info("已生成随机名单", zap.Int("count", count), zap.Bool("replace", replace))
	return s.Fetch(ctx)
}

// ────────────────────── EnsureSeeded ──────────────────────

func (s *rosterService) EnsureSeeded(ctx context.Context, count int) error {
	n, err := s.repo.Student.Count(ctx)
	if err != nil {
		return fmt.Errorf("统计学生数量失败: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = s.Seed(ctx, count, false)
	return err
}

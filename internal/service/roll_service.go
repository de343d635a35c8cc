package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roll-call/internal/dto"
	"roll-call/internal/model"
	"roll-call/internal/repository"
	"roll-call/internal/roll"
)

// ── 点名记录模块业务错误 ──

var (
	ErrRollNotFound  = errors.New("点名记录不存在")
	ErrRollForbidden = errors.New("无权查看该点名记录")
)

// RollService 点名记录业务接口
type RollService interface {
	// Complete 保存当前看板为一次已完成的点名，并退出点名模式
	Complete(ctx context.Context, staffID string) (*dto.RollDetailResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.RollDetailResponse, error)
	List(ctx context.Context, req *dto.RollListRequest, callerID, callerRole string) ([]dto.RollResponse, int64, error)
}

type rollService struct {
	repo   *repository.Repository
	board  BoardService
	logger *zap.Logger
	now    func() time.Time
}

// NewRollService 创建 RollService 实例
func NewRollService(repo *repository.Repository, board BoardService, logger *zap.Logger) RollService {
	return &rollService{repo: repo, board: board, logger: logger, now: time.Now}
}

// ────────────────────── Complete ──────────────────────

func (s *rollService) Complete(ctx context.Context, staffID string) (*dto.RollDetailResponse, error) {
	var r *model.Roll
	// 保存与退出点名模式在看板锁内完成，保存期间的点击排在其后
	_, err := s.board.Finish(ctx, staffID, func(state roll.BoardState) error {
		if state.Status != roll.StatusLoaded {
			return roll.ErrRosterNotLoaded
		}
		r = s.newRoll(staffID, state)
		if err := s.repo.Roll.Create(ctx, r); err != nil {
			s.logger.Error("保存点名记录失败", zap.String("staff_id", staffID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("点名已完成",
		zap.String("roll_id", r.RollID),
		zap.String("staff_id", staffID),
		zap.Int("present", r.PresentCount),
		zap.Int("late", r.LateCount),
		zap.Int("absent", r.AbsentCount),
	)

	return toRollDetailResponse(r), nil
}

func (s *rollService) newRoll(staffID string, state roll.BoardState) *model.Roll {
	r := &model.Roll{
		RollID:       uuid.NewString(),
		StaffID:      staffID,
		CompletedAt:  s.now().UTC(),
		TotalCount:   state.Counts.All,
		PresentCount: state.Counts.Present,
		LateCount:    state.Counts.Late,
		AbsentCount:  state.Counts.Absent,
		Entries:      make([]model.RollEntry, 0, len(state.Students)),
	}
	for _, st := range state.Students {
		r.Entries = append(r.Entries, model.RollEntry{
			RollEntryID: uuid.NewString(),
			StudentID:   st.ID,
			FirstName:   st.FirstName,
			LastName:    st.LastName,
			RollState:   st.State,
		})
	}
	return r
}

// ────────────────────── GetByID ──────────────────────

func (s *rollService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.RollDetailResponse, error) {
	r, err := s.repo.Roll.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRollNotFound
		}
		s.logger.Error("查询点名记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if callerRole != model.RoleAdmin && r.StaffID != callerID {
		return nil, ErrRollForbidden
	}
	return toRollDetailResponse(r), nil
}

// ────────────────────── List ──────────────────────

func (s *rollService) List(ctx context.Context, req *dto.RollListRequest, callerID, callerRole string) ([]dto.RollResponse, int64, error) {
	scope := callerID
	if callerRole == model.RoleAdmin {
		scope = ""
	}

	_, size, offset := req.Window()
	rolls, total, err := s.repo.Roll.List(ctx, scope, offset, size)
	if err != nil {
		s.logger.Error("列出点名记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RollResponse, 0, len(rolls))
	for i := range rolls {
		result = append(result, toRollResponse(&rolls[i]))
	}
	return result, total, nil
}

// ── 内部辅助方法 ──

func toRollResponse(r *model.Roll) dto.RollResponse {
	return dto.RollResponse{
		ID:          r.RollID,
		StaffID:     r.StaffID,
		CompletedAt: r.CompletedAt.Format(time.RFC3339),
		Counts:      r.Counts(),
	}
}

func toRollDetailResponse(r *model.Roll) *dto.RollDetailResponse {
	resp := &dto.RollDetailResponse{
		RollResponse: toRollResponse(r),
		Entries:      make([]dto.RollEntryResponse, 0, len(r.Entries)),
	}
	if r.Staff != nil {
		resp.StaffName = r.Staff.Name
	}
	for _, e := range r.Entries {
		resp.Entries = append(resp.Entries, dto.RollEntryResponse{
			StudentID: e.StudentID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			RollState: e.RollState,
		})
	}
	return resp
}

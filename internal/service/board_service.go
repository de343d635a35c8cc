package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"roll-call/internal/dto"
	"roll-call/internal/roll"
	pkgerrors "roll-call/pkg/errors"
	"roll-call/pkg/metrics"
)

// ── 看板模块业务错误 ──

var (
	ErrBoardNotFound = errors.New("看板不存在，请先加载名单")
)

// BoardCache 看板快照存储（Redis 实现见 pkg/redis）
type BoardCache interface {
	SaveBoard(ctx context.Context, staffID string, data []byte, ttl time.Duration) error
	LoadBoard(ctx context.Context, staffID string) ([]byte, error)
	DeleteBoard(ctx context.Context, staffID string) error
	DeleteAllBoards(ctx context.Context) (int, error)
}

// BoardService 点名看板业务接口
//
// 每名教职工持有一个看板；看板的全部状态变更都经由 roll.Store 的 Dispatch 完成。
type BoardService interface {
	// Load 发起名单请求并写入看板（loading → loaded | error）
	Load(ctx context.Context, staffID string) (*dto.BoardResponse, error)
	// Get 返回当前看板视图
	Get(ctx context.Context, staffID string) (*dto.BoardResponse, error)
	// Dispatch 对看板应用一个操作
	Dispatch(ctx context.Context, staffID string, action roll.Action) (*dto.BoardResponse, error)
	// State 返回看板完整状态（含未被筛选的全部学生）
	State(ctx context.Context, staffID string) (roll.BoardState, error)
	// Subscribe 订阅看板状态变更
	Subscribe(ctx context.Context, staffID string) (<-chan roll.BoardState, func(), error)
	// Finish 以当前状态调用 save，成功后退出点名模式；save 期间看板不接受其他操作
	Finish(ctx context.Context, staffID string, save func(roll.BoardState) error) (roll.BoardState, error)
	// Discard 丢弃看板
	Discard(ctx context.Context, staffID string) error
	// ResetAll 清空全部看板，返回清空数量
	ResetAll(ctx context.Context) int
	// CloseAll 关闭内存中的看板与订阅，保留快照（进程退出时调用）
	CloseAll()
}

type boardService struct {
	roster      RosterService
	cache       BoardCache // 可为 nil：不保存快照
	snapshotTTL time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger

	mu     sync.RWMutex
	boards map[string]*roll.Store
}

// NewBoardService 创建 BoardService 实例
func NewBoardService(
	roster RosterService,
	cache BoardCache,
	snapshotTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) BoardService {
	return &boardService{
		roster:      roster,
		cache:       cache,
		snapshotTTL: snapshotTTL,
		metrics:     m,
		logger:      logger,
		boards:      make(map[string]*roll.Store),
	}
}

// ────────────────────── Load ──────────────────────

func (s *boardService) Load(ctx context.Context, staffID string) (*dto.BoardResponse, error) {
	store := s.getOrCreate(ctx, staffID)

	if _, err := s.apply(ctx, staffID, store, roll.LoadStarted{}); err != nil {
		return nil, err
	}

	students, fetchErr := s.roster.Fetch(ctx)
	if fetchErr != nil {
		s.metrics.RosterLoads.WithLabelValues(string(roll.StatusError)).Inc()
		s.logger.Warn("名单加载失败", zap.String("staff_id", staffID), zap.Error(fetchErr))

		state, err := s.apply(ctx, staffID, store, roll.LoadFailed{Reason: ErrRosterUnavailable.Error()})
		if err != nil {
			return nil, err
		}
		return dto.NewBoardResponse(state), ErrRosterUnavailable
	}

	state, err := s.apply(ctx, staffID, store, roll.LoadSucceeded{Students: students})
	if err != nil {
		return nil, err
	}
	s.metrics.RosterLoads.WithLabelValues(string(roll.StatusLoaded)).Inc()
	s.logger.Info("名单加载完成", zap.String("staff_id", staffID), zap.Int("students", len(students)))

	return dto.NewBoardResponse(state), nil
}

// ────────────────────── Get / State ──────────────────────

func (s *boardService) Get(ctx context.Context, staffID string) (*dto.BoardResponse, error) {
	state, err := s.State(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return dto.NewBoardResponse(state), nil
}

func (s *boardService) State(ctx context.Context, staffID string) (roll.BoardState, error) {
	store, ok := s.lookup(ctx, staffID)
	if !ok {
		return roll.BoardState{}, ErrBoardNotFound
	}
	return store.State(), nil
}

// ────────────────────── Dispatch ──────────────────────

func (s *boardService) Dispatch(ctx context.Context, staffID string, action roll.Action) (*dto.BoardResponse, error) {
	store, ok := s.lookup(ctx, staffID)
	if !ok {
		return nil, ErrBoardNotFound
	}

	state, tr, err := store.Dispatch(action)
	if err != nil {
		s.metrics.BoardActions.WithLabelValues(action.Name(), "rejected").Inc()
		return nil, boardErr(err)
	}
	s.metrics.BoardActions.WithLabelValues(action.Name(), "applied").Inc()

	if tr != nil {
		s.metrics.Transitions.WithLabelValues(string(tr.From), string(tr.To)).Inc()
		s.logger.Debug("点名状态转移",
			zap.String("staff_id", staffID),
			zap.Int("student_id", tr.StudentID),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)),
		)
	}
	if !s.persist(ctx, staffID, store, state) {
		return nil, ErrBoardNotFound
	}

	resp := dto.NewBoardResponse(state)
	resp.Transition = tr
	return resp, nil
}

// ────────────────────── Finish ──────────────────────

func (s *boardService) Finish(ctx context.Context, staffID string, save func(roll.BoardState) error) (roll.BoardState, error) {
	store, ok := s.lookup(ctx, staffID)
	if !ok {
		return roll.BoardState{}, ErrBoardNotFound
	}

	action := roll.RollModeExited{}
	state, _, err := store.Commit(save, action)
	if err != nil {
		return roll.BoardState{}, boardErr(err)
	}
	s.metrics.BoardActions.WithLabelValues(action.Name(), "applied").Inc()
	// 记录已保存，看板在此期间被重置时只是不再写快照
	s.persist(ctx, staffID, store, state)
	return state, nil
}

// ────────────────────── Subscribe ──────────────────────

func (s *boardService) Subscribe(ctx context.Context, staffID string) (<-chan roll.BoardState, func(), error) {
	store, ok := s.lookup(ctx, staffID)
	if !ok {
		return nil, nil, ErrBoardNotFound
	}
	ch, cancel := store.Subscribe()
	return ch, cancel, nil
}

// ────────────────────── Discard / ResetAll ──────────────────────

func (s *boardService) Discard(ctx context.Context, staffID string) error {
	s.mu.Lock()
	store, ok := s.boards[staffID]
	delete(s.boards, staffID)
	s.metrics.ActiveBoards.Set(float64(len(s.boards)))
	s.mu.Unlock()

	if ok {
		store.Close()
	}
	if s.cache != nil {
		if err := s.cache.DeleteBoard(ctx, staffID); err != nil {
			s.logger.Warn("删除看板快照失败", zap.String("staff_id", staffID), zap.Error(err))
		}
	}
	if !ok {
		return ErrBoardNotFound
	}
	return nil
}

func (s *boardService) ResetAll(ctx context.Context) int {
	s.mu.Lock()
	boards := s.boards
	s.boards = make(map[string]*roll.Store)
	s.metrics.ActiveBoards.Set(0)
	s.mu.Unlock()

	for _, store := range boards {
		store.Close()
	}

	if s.cache != nil {
		if _, err := s.cache.DeleteAllBoards(ctx); err != nil {
			s.logger.Warn("清空看板快照失败", zap.Error(err))
		}
	}
	return len(boards)
}

func (s *boardService) CloseAll() {
	s.mu.Lock()
	boards := s.boards
	s.boards = make(map[string]*roll.Store)
	s.metrics.ActiveBoards.Set(0)
	s.mu.Unlock()

	for _, store := range boards {
		store.Close()
	}
}

// ── 内部辅助方法 ──

// apply 应用操作并保存快照
// 看板在名单请求期间被丢弃或重置时返回 ErrBoardNotFound
func (s *boardService) apply(ctx context.Context, staffID string, store *roll.Store, action roll.Action) (roll.BoardState, error) {
	state, _, err := store.Dispatch(action)
	if err != nil {
		if errors.Is(err, roll.ErrBoardClosed) {
			s.logger.Info("看板已被移除，放弃本次操作", zap.String("staff_id", staffID), zap.String("action", action.Name()))
			return roll.BoardState{}, ErrBoardNotFound
		}
		s.logger.Error("看板操作失败", zap.String("action", action.Name()), zap.Error(err))
		return roll.BoardState{}, err
	}
	s.metrics.BoardActions.WithLabelValues(action.Name(), "applied").Inc()
	if !s.persist(ctx, staffID, store, state) {
		return roll.BoardState{}, ErrBoardNotFound
	}
	return state, nil
}

func boardErr(err error) error {
	if errors.Is(err, roll.ErrBoardClosed) {
		return ErrBoardNotFound
	}
	return err
}

// lookup 先查内存，再尝试从快照恢复
func (s *boardService) lookup(ctx context.Context, staffID string) (*roll.Store, bool) {
	s.mu.RLock()
	store, ok := s.boards[staffID]
	s.mu.RUnlock()
	if ok {
		return store, true
	}

	state, ok := s.restore(ctx, staffID)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 并发恢复时以先写入者为准
	if existing, ok := s.boards[staffID]; ok {
		return existing, true
	}
	store = roll.NewStore(state)
	s.boards[staffID] = store
	s.metrics.ActiveBoards.Set(float64(len(s.boards)))
	return store, true
}

func (s *boardService) getOrCreate(ctx context.Context, staffID string) *roll.Store {
	if store, ok := s.lookup(ctx, staffID); ok {
		return store
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.boards[staffID]; ok {
		return store
	}
	store := roll.NewStore(roll.NewBoardState())
	s.boards[staffID] = store
	s.metrics.ActiveBoards.Set(float64(len(s.boards)))
	return store
}

func (s *boardService) restore(ctx context.Context, staffID string) (roll.BoardState, bool) {
	if s.cache == nil {
		return roll.BoardState{}, false
	}

	data, err := s.cache.LoadBoard(ctx, staffID)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrCacheMiss) {
			s.logger.Warn("读取看板快照失败", zap.String("staff_id", staffID), zap.Error(err))
		}
		return roll.BoardState{}, false
	}

	var state roll.BoardState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("看板快照格式无效", zap.String("staff_id", staffID), zap.Error(err))
		return roll.BoardState{}, false
	}
	// 名单请求不会跨进程继续，loading 状态的快照没有意义
	if state.Status == roll.StatusLoading {
		return roll.BoardState{}, false
	}

	s.logger.Info("已从快照恢复看板", zap.String("staff_id", staffID), zap.Int64("version", state.Version))
	return state, true
}

// persist 保存快照；store 已不在 boards 中时跳过并返回 false
//
// 持有读锁直到写入完成，Discard/ResetAll 删除快照必然发生在写入之后，
// 已移除的看板不会被快照重新带回。
func (s *boardService) persist(ctx context.Context, staffID string, store *roll.Store, state roll.BoardState) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.boards[staffID] != store {
		return false
	}
	if s.cache == nil {
		return true
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("序列化看板快照失败", zap.Error(err))
		return true
	}
	if err := s.cache.SaveBoard(ctx, staffID, data, s.snapshotTTL); err != nil {
		s.logger.Warn("保存看板快照失败", zap.String("staff_id", staffID), zap.Error(err))
	}
	return true
}

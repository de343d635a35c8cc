package roll

import (
	"fmt"
	"sync"
)

// LoadStatus 名单加载状态
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusError   LoadStatus = "error"
)

// BoardState 一名教职工的点名看板完整状态
//
// 所有变更都经由 Reduce 完成；展示用的名单由 Visible 从状态推导，不单独存储。
type BoardState struct {
	Status   LoadStatus `json:"status"`
	Students []Student  `json:"students"`
	Counts   Counts     `json:"counts"`
	Query    Query      `json:"query"`
	RollMode bool       `json:"roll_mode"`
	Error    string     `json:"error,omitempty"`
	Version  int64      `json:"version"`
}

// NewBoardState 名单请求已发出、尚未返回时的看板状态
func NewBoardState() BoardState {
	return BoardState{
		Status: StatusLoading,
		Query:  DefaultQuery(),
	}
}

// Visible 当前视图条件下应展示的学生
func (s BoardState) Visible() []Student {
	if s.Status != StatusLoaded {
		return nil
	}
	return View(s.Students, s.Query)
}

// Student 按 ID 查找学生
func (s BoardState) Student(id int) (Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// ═══════════════════════════════════════════════════════════
// Actions
// ═══════════════════════════════════════════════════════════

// Action 看板操作
type Action interface {
	// Name 操作名（用于日志与指标）
	Name() string
}

type (
	// LoadStarted 发起名单请求
	LoadStarted struct{}
	// LoadSucceeded 名单请求成功
	LoadSucceeded struct{ Students []Student }
	// LoadFailed 名单请求失败
	LoadFailed struct{ Reason string }
	// StudentClicked 点击学生的状态图标，触发一次状态转移
	StudentClicked struct{ StudentID int }
	// SortChanged 切换排序字段
	SortChanged struct{ Key SortKey }
	// SortDirectionToggled 升降序切换
	SortDirectionToggled struct{}
	// SortDirectionSet 直接指定升降序
	SortDirectionSet struct{ Ascending bool }
	// SearchChanged 修改搜索词
	SearchChanged struct{ Term string }
	// FilterChanged 按汇总分类筛选
	FilterChanged struct{ Filter Category }
	// RollModeEntered 进入点名模式
	RollModeEntered struct{}
	// RollModeExited 退出点名模式
	RollModeExited struct{}
)

func (LoadStarted) Name() string          { return "load_started" }
func (LoadSucceeded) Name() string        { return "load_succeeded" }
func (LoadFailed) Name() string           { return "load_failed" }
func (StudentClicked) Name() string       { return "student_clicked" }
func (SortChanged) Name() string          { return "sort_changed" }
func (SortDirectionToggled) Name() string { return "sort_direction_toggled" }
func (SortDirectionSet) Name() string     { return "sort_direction_set" }
func (SearchChanged) Name() string        { return "search_changed" }
func (FilterChanged) Name() string        { return "filter_changed" }
func (RollModeEntered) Name() string      { return "roll_mode_entered" }
func (RollModeExited) Name() string       { return "roll_mode_exited" }

// Reduce 纯函数：根据操作计算新状态
//
// 出错时返回原状态与错误；发生状态转移时额外返回该转移。
// 不修改 s 所引用的学生切片。
func Reduce(s BoardState, a Action) (BoardState, *Transition, error) {
	next := s

	switch act := a.(type) {
	case LoadStarted:
		next.Status = StatusLoading
		next.Students = nil
		next.Counts = Counts{}
		next.RollMode = false
		next.Error = ""

	case LoadSucceeded:
		students := make([]Student, len(act.Students))
		for i, st := range act.Students {
			st.State = StateUnmarked
			students[i] = st
		}
		next.Status = StatusLoaded
		next.Students = students
		next.Counts = NewCounts(len(students))
		next.Error = ""

	case LoadFailed:
		next.Status = StatusError
		next.Students = nil
		next.Counts = Counts{}
		next.RollMode = false
		next.Error = act.Reason

	case StudentClicked:
		if s.Status != StatusLoaded {
			return s, nil, ErrRosterNotLoaded
		}
		if !s.RollMode {
			return s, nil, ErrNotInRollMode
		}
		idx := -1
		for i := range s.Students {
			if s.Students[i].ID == act.StudentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s, nil, fmt.Errorf("%w: id=%d", ErrStudentNotFound, act.StudentID)
		}

		from := s.Students[idx].State
		to := Next(from)

		students := make([]Student, len(s.Students))
		copy(students, s.Students)
		students[idx].State = to

		next.Students = students
		next.Counts.Apply(from, to)
		next.Version++
		return next, &Transition{StudentID: act.StudentID, From: from, To: to}, nil

	case SortChanged:
		if act.Key != SortByFirstName && act.Key != SortByLastName {
			return s, nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, act.Key)
		}
		next.Query.SortKey = act.Key

	case SortDirectionToggled:
		next.Query.Ascending = !s.Query.Ascending

	case SortDirectionSet:
		next.Query.Ascending = act.Ascending

	case SearchChanged:
		next.Query.Search = act.Term

	case FilterChanged:
		f, err := ParseCategory(string(act.Filter))
		if err != nil {
			return s, nil, err
		}
		next.Query.Filter = f

	case RollModeEntered:
		if s.Status != StatusLoaded {
			return s, nil, ErrRosterNotLoaded
		}
		next.RollMode = true

	case RollModeExited:
		next.RollMode = false

	default:
		return s, nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	next.Version++
	return next, nil, nil
}

// ═══════════════════════════════════════════════════════════
// Store
// ═══════════════════════════════════════════════════════════

// Store 看板状态容器
//
// 同一看板的所有操作在 mu 下串行执行；每次成功变更后向订阅者推送最新快照。
// 订阅通道容量为 1，消费慢的订阅者只会丢弃过期快照，不会阻塞 Dispatch。
type Store struct {
	mu      sync.Mutex
	state   BoardState
	subs    map[int]chan BoardState
	nextSub int
	closed  bool
}

// NewStore 以给定状态创建容器
func NewStore(initial BoardState) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]chan BoardState),
	}
}

// State 当前状态快照
func (st *Store) State() BoardState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Dispatch 应用一个操作；容器关闭后返回 ErrBoardClosed
func (st *Store) Dispatch(a Action) (BoardState, *Transition, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.applyLocked(a)
}

// Commit 在同一把锁内先以当前状态调用 fn，fn 成功后再应用 a
//
// fn 执行期间其他 Dispatch 被阻塞，因此 fn 看到的状态正是 a 所作用的状态。
// fn 返回错误时状态不变。
func (st *Store) Commit(fn func(BoardState) error, a Action) (BoardState, *Transition, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return st.state, nil, ErrBoardClosed
	}
	if err := fn(st.state); err != nil {
		return st.state, nil, err
	}
	return st.applyLocked(a)
}

func (st *Store) applyLocked(a Action) (BoardState, *Transition, error) {
	if st.closed {
		return st.state, nil, ErrBoardClosed
	}
	next, tr, err := Reduce(st.state, a)
	if err != nil {
		return st.state, nil, err
	}
	st.state = next

	for _, ch := range st.subs {
		publish(ch, next)
	}
	return next, tr, nil
}

// Subscribe 订阅状态变更；订阅时立即收到一次当前快照
// 返回的 cancel 可重复调用
func (st *Store) Subscribe() (<-chan BoardState, func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ch := make(chan BoardState, 1)
	if st.closed {
		close(ch)
		return ch, func() {}
	}

	id := st.nextSub
	st.nextSub++
	st.subs[id] = ch
	ch <- st.state

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			if c, ok := st.subs[id]; ok {
				delete(st.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close 关闭全部订阅，之后的 Subscribe 得到已关闭的通道，Dispatch 返回 ErrBoardClosed
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.closed = true
	for id, ch := range st.subs {
		delete(st.subs, id)
		close(ch)
	}
}

// publish 非阻塞推送：通道已满时先丢弃旧快照
func publish(ch chan BoardState, s BoardState) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

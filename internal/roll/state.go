// Package roll 点名核心逻辑：点名状态机、汇总计数、名单视图与看板状态容器。
//
// 本包不依赖存储与传输层，全部为内存中的纯函数或带锁的状态容器，
// 由 service 层组装并对外暴露。
package roll

import "fmt"

// State 学生的点名状态
type State string

const (
	StateUnmarked State = "unmark" // 初始状态，仅在名单加载时出现
	StatePresent  State = "present"
	StateLate     State = "late"
	StateAbsent   State = "absent"
)

// States 全部合法状态（按展示顺序）
var States = []State{StateUnmarked, StatePresent, StateLate, StateAbsent}

// Valid 判断是否为合法状态
func (s State) Valid() bool {
	switch s {
	case StateUnmarked, StatePresent, StateLate, StateAbsent:
		return true
	}
	return false
}

// Counted 该状态是否计入汇总桶（unmark 不计入）
func (s State) Counted() bool {
	return s == StatePresent || s == StateLate || s == StateAbsent
}

// ParseState 将外部输入解析为 State
func ParseState(v string) (State, error) {
	s := State(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, v)
	}
	return s, nil
}

// Next 计算点击后的下一状态
//
//	unmark → present → late → absent → present …
//
// unmark 只是入口，不会再次成为转移目标。
func Next(s State) State {
	switch s {
	case StatePresent:
		return StateLate
	case StateLate:
		return StateAbsent
	default:
		// unmark / absent
		return StatePresent
	}
}

// Transition 一次状态转移
type Transition struct {
	StudentID int   `json:"student_id"`
	From      State `json:"from"`
	To        State `json:"to"`
}

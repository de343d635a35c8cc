package dto

import (
	"errors"

	"roll-call/internal/roll"
)

// ErrActionFieldMissing 操作缺少对应的参数字段
var ErrActionFieldMissing = errors.New("操作缺少必要字段")

// ── 点名看板 DTO ──

// 看板操作类型
const (
	ActionStudentClicked       = "student_clicked"
	ActionSortChanged          = "sort_changed"
	ActionSortDirectionToggled = "sort_direction_toggled"
	ActionSortDirectionSet     = "sort_direction_set"
	ActionSearchChanged        = "search_changed"
	ActionFilterChanged        = "filter_changed"
	ActionRollModeEntered      = "roll_mode_entered"
	ActionRollModeExited       = "roll_mode_exited"
)

// BoardActionRequest 看板操作请求
// 根据 type 读取对应字段，其余字段忽略
type BoardActionRequest struct {
	Type      string `json:"type"       binding:"required,board_action"`
	StudentID *int   `json:"student_id" binding:"omitempty,min=1"`
	SortKey   string `json:"sort_key"   binding:"omitempty,sort_key"`
	Ascending *bool  `json:"ascending"`
	Search    string `json:"search"     binding:"max=100"`
	Filter    string `json:"filter"     binding:"omitempty,roll_category"`
}

// ToAction 转换为点名核心操作
func (r *BoardActionRequest) ToAction() (roll.Action, error) {
	switch r.Type {
	case ActionStudentClicked:
		if r.StudentID == nil {
			return nil, ErrActionFieldMissing
		}
		return roll.StudentClicked{StudentID: *r.StudentID}, nil
	case ActionSortChanged:
		if r.SortKey == "" {
			return nil, ErrActionFieldMissing
		}
		key, err := roll.ParseSortKey(r.SortKey)
		if err != nil {
			return nil, err
		}
		return roll.SortChanged{Key: key}, nil
	case ActionSortDirectionToggled:
		return roll.SortDirectionToggled{}, nil
	case ActionSortDirectionSet:
		if r.Ascending == nil {
			return nil, ErrActionFieldMissing
		}
		return roll.SortDirectionSet{Ascending: *r.Ascending}, nil
	case ActionSearchChanged:
		return roll.SearchChanged{Term: r.Search}, nil
	case ActionFilterChanged:
		f, err := roll.ParseCategory(r.Filter)
		if err != nil {
			return nil, err
		}
		return roll.FilterChanged{Filter: f}, nil
	case ActionRollModeEntered:
		return roll.RollModeEntered{}, nil
	case ActionRollModeExited:
		return roll.RollModeExited{}, nil
	}
	return nil, roll.ErrUnknownAction
}

// BoardResponse 看板视图（由看板状态推导）
type BoardResponse struct {
	Status     roll.LoadStatus  `json:"status"`
	RollMode   bool             `json:"roll_mode"`
	Query      roll.Query       `json:"query"`
	Counts     roll.Counts      `json:"counts"`
	Students   []roll.Student   `json:"students"`
	Total      int              `json:"total"`
	Error      string           `json:"error,omitempty"`
	Version    int64            `json:"version"`
	Transition *roll.Transition `json:"transition,omitempty"`
}

// NewBoardResponse 从看板状态构造视图
func NewBoardResponse(s roll.BoardState) *BoardResponse {
	visible := s.Visible()
	if visible == nil {
		visible = []roll.Student{}
	}
	return &BoardResponse{
		Status:   s.Status,
		RollMode: s.RollMode,
		Query:    s.Query,
		Counts:   s.Counts,
		Students: visible,
		Total:    len(s.Students),
		Error:    s.Error,
		Version:  s.Version,
	}
}

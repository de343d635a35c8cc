package dto

import "roll-call/internal/roll"

// ── 点名记录 DTO ──

// 点名记录列表分页
const (
	DefaultRollPageSize = 10
	MaxRollPageSize     = 50
)

// RollListRequest 点名记录列表查询参数，零值表示第 1 页
type RollListRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// Window 返回规范化后的页码、每页条数与偏移量
func (r *RollListRequest) Window() (page, size, offset int) {
	page, size = r.Page, r.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultRollPageSize
	}
	if size > MaxRollPageSize {
		size = MaxRollPageSize
	}
	return page, size, (page - 1) * size
}

// RollResponse 点名记录摘要
type RollResponse struct {
	ID          string      `json:"id"`
	StaffID     string      `json:"staff_id"`
	CompletedAt string      `json:"completed_at"`
	Counts      roll.Counts `json:"counts"`
}

// RollEntryResponse 单个学生的点名结果
type RollEntryResponse struct {
	StudentID int        `json:"student_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	RollState roll.State `json:"roll_state"`
}

// RollDetailResponse 点名记录详情
type RollDetailResponse struct {
	RollResponse
	StaffName string              `json:"staff_name,omitempty"`
	Entries   []RollEntryResponse `json:"entries"`
}

package dto

import "roll-call/internal/roll"

// ── 名单模块 DTO ──

// HomeboardStudentsResponse get-homeboard-students 响应
type HomeboardStudentsResponse struct {
	Students []roll.Student `json:"students"`
}

// SeedRosterRequest 生成随机名单请求
type SeedRosterRequest struct {
	Count   int  `json:"count"   binding:"required,min=1,max=500"`
	Replace bool `json:"replace"` // 为 true 时先清空现有名单
}

package handler

import (
	"github.com/gin-gonic/gin"

	"roll-call/internal/dto"
	"roll-call/internal/service"
	"roll-call/pkg/response"
)

// RosterHandler 名单模块 HTTP 处理器
type RosterHandler struct {
	rosterSvc service.RosterService
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(rosterSvc service.RosterService) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc}
}

// GetHomeboardStudents 返回完整名单，所有学生状态为 unmark
// GET /api/v1/get-homeboard-students
func (h *RosterHandler) GetHomeboardStudents(c *gin.Context) {
	students, err := h.rosterSvc.Fetch(c.Request.Context())
	if err != nil {
		response.ServiceUnavailable(c, response.CodeRosterUnavailable, "名单加载失败")
		return
	}
	response.OK(c, dto.HomeboardStudentsResponse{Students: students})
}

// Seed 生成随机名单（管理员）
// POST /api/v1/roster/seed
func (h *RosterHandler) Seed(c *gin.Context) {
	var req dto.SeedRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	students, err := h.rosterSvc.Seed(c.Request.Context(), req.Count, req.Replace)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, dto.HomeboardStudentsResponse{Students: students})
}

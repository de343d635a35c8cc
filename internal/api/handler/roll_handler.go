package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"roll-call/internal/dto"
	"roll-call/internal/roll"
	"roll-call/internal/service"
	"roll-call/pkg/response"
)

// RollHandler 点名记录 HTTP 处理器
type RollHandler struct {
	rollSvc service.RollService
}

// NewRollHandler 创建 RollHandler
func NewRollHandler(rollSvc service.RollService) *RollHandler {
	return &RollHandler{rollSvc: rollSvc}
}

// Complete 完成本次点名
// POST /api/v1/rolls
func (h *RollHandler) Complete(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	result, err := h.rollSvc.Complete(c.Request.Context(), staffID)
	if err != nil {
		h.handleRollError(c, err)
		return
	}
	response.Created(c, result)
}

// List 点名记录列表（管理员可见全部）
// GET /api/v1/rolls
func (h *RollHandler) List(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.RollListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	list, total, err := h.rollSvc.List(c.Request.Context(), &req, staffID, role)
	if err != nil {
		response.InternalError(c)
		return
	}
	page, size, _ := req.Window()
	response.OKPage(c, list, total, page, size)
}

// Get 点名记录详情
// GET /api/v1/rolls/:id
func (h *RollHandler) Get(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.rollSvc.GetByID(c.Request.Context(), c.Param("id"), staffID, role)
	if err != nil {
		h.handleRollError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *RollHandler) handleRollError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRollNotFound):
		response.NotFound(c, response.CodeRollNotFound, "点名记录不存在")
	case errors.Is(err, service.ErrRollForbidden):
		response.Forbidden(c, response.CodeForbidden, "无权查看该点名记录")
	case errors.Is(err, service.ErrBoardNotFound):
		response.NotFound(c, response.CodeBoardNotFound, "看板不存在，请先加载名单")
	case errors.Is(err, roll.ErrRosterNotLoaded):
		response.Conflict(c, response.CodeRosterNotLoaded, "名单尚未加载完成")
	default:
		response.InternalError(c)
	}
}

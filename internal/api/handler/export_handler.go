package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"roll-call/internal/service"
	"roll-call/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoll 导出单次点名为 Excel
// GET /api/v1/rolls/:id/export
func (h *ExportHandler) ExportRoll(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoll(c.Request.Context(), c.Param("id"), staffID, role)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar 已完成点名的 iCalendar 订阅
// GET /api/v1/rolls/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	cal, err := h.exportSvc.ExportCalendar(c.Request.Context(), staffID, role)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=rolls.ics")
	c.Data(http.StatusOK, icsContentType, []byte(cal))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRollNotFound):
		response.NotFound(c, response.CodeRollNotFound, "点名记录不存在")
	case errors.Is(err, service.ErrRollForbidden):
		response.Forbidden(c, response.CodeForbidden, "无权导出该点名记录")
	default:
		response.InternalError(c)
	}
}

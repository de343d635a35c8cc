package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roll-call/internal/dto"
	"roll-call/internal/roll"
	"roll-call/internal/service"
	"roll-call/pkg/response"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// BoardHandler 点名看板 HTTP 处理器
type BoardHandler struct {
	boardSvc service.BoardService
	upgrader websocket.Upgrader
}

// NewBoardHandler 创建 BoardHandler
// allowOrigins 为 WebSocket 握手允许的来源，与 CORS 配置一致
func NewBoardHandler(boardSvc service.BoardService, allowOrigins []string) *BoardHandler {
	origins := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}

	return &BoardHandler{
		boardSvc: boardSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 非浏览器客户端不带 Origin
				return origin == "" || origins[origin]
			},
		},
	}
}

// Load 加载名单到当前教职工的看板
// POST /api/v1/board/load
func (h *BoardHandler) Load(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	result, err := h.boardSvc.Load(c.Request.Context(), staffID)
	if err != nil {
		h.handleBoardError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 当前看板视图
// GET /api/v1/board
func (h *BoardHandler) Get(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	result, err := h.boardSvc.Get(c.Request.Context(), staffID)
	if err != nil {
		h.handleBoardError(c, err)
		return
	}
	response.OK(c, result)
}

// Dispatch 对看板应用一个操作
// POST /api/v1/board/actions
func (h *BoardHandler) Dispatch(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.BoardActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	action, err := req.ToAction()
	if err != nil {
		h.handleBoardError(c, err)
		return
	}

	result, err := h.boardSvc.Dispatch(c.Request.Context(), staffID, action)
	if err != nil {
		h.handleBoardError(c, err)
		return
	}
	response.OK(c, result)
}

// Discard 丢弃当前看板
// DELETE /api/v1/board
func (h *BoardHandler) Discard(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	if err := h.boardSvc.Discard(c.Request.Context(), staffID); err != nil {
		h.handleBoardError(c, err)
		return
	}
	response.OK(c, nil)
}

// Subscribe 以 WebSocket 推送看板视图
// GET /api/v1/board/ws
//
// 连接建立后立即推送一次当前视图，之后每次状态变更推送一次；
// 看板被丢弃或每日重置时服务端关闭连接。
func (h *BoardHandler) Subscribe(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	states, cancel, err := h.boardSvc.Subscribe(c.Request.Context(), staffID)
	if err != nil {
		h.handleBoardError(c, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已写入错误响应
		return
	}
	defer conn.Close()

	// 读循环只用于感知客户端关闭与 pong
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case state, open := <-states:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "board closed"))
				return
			}
			if err := conn.WriteJSON(dto.NewBoardResponse(state)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *BoardHandler) handleBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		response.NotFound(c, response.CodeBoardNotFound, "看板不存在，请先加载名单")
	case errors.Is(err, roll.ErrRosterNotLoaded):
		response.Conflict(c, response.CodeRosterNotLoaded, "名单尚未加载完成")
	case errors.Is(err, roll.ErrNotInRollMode):
		response.Conflict(c, response.CodeNotInRollMode, "请先进入点名模式")
	case errors.Is(err, roll.ErrStudentNotFound):
		response.NotFound(c, response.CodeStudentNotFound, "学生不存在")
	case errors.Is(err, service.ErrRosterUnavailable):
		response.ServiceUnavailable(c, response.CodeRosterUnavailable, "名单加载失败，请重试")
	case errors.Is(err, dto.ErrActionFieldMissing),
		errors.Is(err, roll.ErrUnknownAction),
		errors.Is(err, roll.ErrInvalidSortKey),
		errors.Is(err, roll.ErrInvalidCategory):
		response.BadRequest(c, response.CodeBadRequest, err.Error())
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"roll-call/pkg/response"
)

// 由 JWT 中间件注入的上下文键
const (
	ctxStaffID  = "staff_id"
	ctxRole     = "role"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetStaffID 从 Gin 上下文中安全提取 staff_id。
// 如果 JWT 中间件未正确注入 staff_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetStaffID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxStaffID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxRole)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// tokenInfo 当前 Token 的 jti 与过期时间（登出时使用）
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	exp, _ := c.Get(ctxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

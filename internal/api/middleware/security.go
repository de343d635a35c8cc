package middleware

import (
	"github.com/gin-gonic/gin"
)

// apiSecurityHeaders 接口只返回 JSON、xlsx 与 ics，不需要加载任何页面资源
var apiSecurityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	// 点名看板与导出文件都含学生姓名，禁止中间代理缓存
	{"Cache-Control", "no-store"},
}

// SecurityHeaders 安全 HTTP 头中间件
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range apiSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}

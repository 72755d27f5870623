// Package response 提供统一的 HTTP JSON 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应的机器可读部分
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success 返回 200 响应；data 中的字段平铺在 success 标志旁
func Success(c *gin.Context, data gin.H) {
	SuccessWithStatus(c, http.StatusOK, data)
}

// SuccessWithStatus 返回指定状态码的成功响应
func SuccessWithStatus(c *gin.Context, status int, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error 返回错误响应，携带机器可读的 kind 与人类可读的 message
func Error(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   ErrorBody{Kind: kind, Message: message},
	})
}

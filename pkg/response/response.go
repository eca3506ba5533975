// Package response 提供统一的 HTTP 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 统一响应结构
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created 返回创建成功响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// ErrorWithStatus 返回指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string, detail string) {
	body := Body{
		Code:    status,
		Message: message,
	}
	if detail != "" {
		body.Data = gin.H{"detail": detail}
	}
	c.JSON(status, body)
}

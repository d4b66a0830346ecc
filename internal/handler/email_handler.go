package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/service"
)

type EmailHandler struct {
	emails *service.EmailService
	users  *service.UserService
}

type SendCodeReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetReq 忘记密码请求体
type ResetReq struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

func NewEmailHandler(emails *service.EmailService, users *service.UserService) *EmailHandler {
	return &EmailHandler{emails: emails, users: users}
}

// SendResetCode 发送重置密码验证码
func (h *EmailHandler) SendResetCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.emails.SendResetCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// ResetPassword 校验验证码后重置密码
func (h *EmailHandler) ResetPassword(c *gin.Context) {
	var req ResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), h.emails, req.Email, req.Code, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/pkg/errcode"
)

const ContextUserIDKey = "user_id"

// TokenVerifier 校验 token 并返回用户 id
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uint64, error)
}

func abortWithError(c *gin.Context, err error) {
	ae := errcode.From(err)
	if ae.Code == errcode.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "request_failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(ae.Code.HTTPStatus(), ae)
}

func AuthMiddleware(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, errcode.ErrMissingToken)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortWithError(c, errcode.ErrTokenFormat)
			return
		}

		userID, err := v.Verify(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, err)
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID 读取认证后的用户 id
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// RequireSelf 路径中的 :userId 必须是当前登录用户
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pathID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil || pathID == 0 {
			abortWithError(c, errcode.ErrInvalidID)
			return
		}
		uid, ok := UserID(c)
		if !ok {
			abortWithError(c, errcode.ErrMissingToken)
			return
		}
		if uid != pathID {
			abortWithError(c, errcode.ErrNotSelf)
			return
		}
		c.Next()
	}
}

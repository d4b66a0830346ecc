package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/middleware"
	"LinkUp/internal/pkg/errcode"
)

// writeError 错误码到 HTTP 状态的唯一出口，内部错误原因只写日志
func writeError(c *gin.Context, err error) {
	ae := errcode.From(err)
	if ae.Code == errcode.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "request_failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	_ = c.Error(err)
	c.JSON(ae.Code.HTTPStatus(), ae)
}

// badRequest 请求体绑定失败
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, errcode.From(errcode.ErrInvalidParams))
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		writeError(c, errcode.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uint64, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, errcode.ErrMissingToken)
	}
	return uid, ok
}

// actorAndCreator 当前用户与路径中的 creatorId
func actorAndCreator(c *gin.Context) (uint64, uint64, bool) {
	uid, ok := currentUser(c)
	if !ok {
		return 0, 0, false
	}
	creatorID, ok := pathID(c, "creatorId")
	return uid, creatorID, ok
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

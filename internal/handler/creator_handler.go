package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/service"
)

type CreatorHandler struct {
	svc *service.CreatorService
}

type CreateCreatorReq struct {
	IsPublic bool `json:"is_public"`
}

type UpdateCreatorReq struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

func NewCreatorHandler(svc *service.CreatorService) *CreatorHandler {
	return &CreatorHandler{svc: svc}
}

func (h *CreatorHandler) Create(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateCreatorReq
	// 空请求体等同于私有
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	creator, err := h.svc.Create(c.Request.Context(), uid, req.IsPublic)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, creator)
}

func (h *CreatorHandler) List(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.svc.ListByUser(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CreatorHandler) Get(c *gin.Context) {
	creatorID, ok := pathID(c, "creatorId")
	if !ok {
		return
	}
	creator, err := h.svc.Get(c.Request.Context(), creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, creator)
}

func (h *CreatorHandler) Update(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	var req UpdateCreatorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	creator, err := h.svc.UpdateVisibility(c.Request.Context(), uid, creatorID, *req.IsPublic)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, creator)
}

func (h *CreatorHandler) Delete(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, creatorID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

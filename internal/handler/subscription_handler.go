package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/service"
)

// SubscriptionHandler 订阅申请与订阅者接口
type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

type ResolveReq struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// RequestFollow 公开创作者返回 200 granted，私有创作者返回 201 pending
func (h *SubscriptionHandler) RequestFollow(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	res, err := h.svc.RequestFollow(c.Request.Context(), uid, creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if res.Status == service.FollowPending {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h *SubscriptionHandler) ListRequests(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	list, err := h.svc.ListRequests(c.Request.Context(), uid, creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *SubscriptionHandler) ResolveRequest(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	reqID, ok := pathID(c, "subRequestId")
	if !ok {
		return
	}
	var req ResolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.svc.ResolveRequest(c.Request.Context(), uid, creatorID, reqID, *req.Accepted)
	if err != nil {
		writeError(c, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"msg": "rejected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "accepted", "subscriber": sub})
}

func (h *SubscriptionHandler) CancelRequest(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	reqID, ok := pathID(c, "subRequestId")
	if !ok {
		return
	}
	if err := h.svc.CancelRequest(c.Request.Context(), uid, creatorID, reqID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	list, err := h.svc.ListSubscribers(c.Request.Context(), uid, creatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *SubscriptionHandler) GetSubscriber(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	subID, ok := pathID(c, "subscriberId")
	if !ok {
		return
	}
	sub, err := h.svc.GetSubscriber(c.Request.Context(), uid, creatorID, subID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// RevokeAccess 所有者移除订阅者或订阅者自己退订
func (h *SubscriptionHandler) RevokeAccess(c *gin.Context) {
	uid, creatorID, ok := actorAndCreator(c)
	if !ok {
		return
	}
	subID, ok := pathID(c, "subscriberId")
	if !ok {
		return
	}
	if err := h.svc.RevokeAccess(c.Request.Context(), uid, creatorID, subID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

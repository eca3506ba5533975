package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/samplemarket/internal/follow/application"
	"github.com/wyfcoding/samplemarket/internal/follow/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

type FollowHandler struct {
	svc *application.FollowApplicationService
}

func NewFollowHandler(svc *application.FollowApplicationService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

func (h *FollowHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	g := r.Group("/v1/follows")
	g.GET("/producers/:producerId/count", h.FollowerCount)

	g.Use(auth)
	{
		g.GET("", h.ListFollowed)
		g.POST("/producers/:producerId", h.Follow)
		g.DELETE("/producers/:producerId", h.Unfollow)
	}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	producerID, err := strconv.ParseUint(c.Param("producerId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid producer id", "")
		return
	}

	if err := h.svc.Follow(c.Request.Context(), c.GetUint(middleware.UserIDKey), uint(producerID)); err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"following": true})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	producerID, err := strconv.ParseUint(c.Param("producerId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid producer id", "")
		return
	}

	if err := h.svc.Unfollow(c.Request.Context(), c.GetUint(middleware.UserIDKey), uint(producerID)); err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"following": false})
}

func (h *FollowHandler) ListFollowed(c *gin.Context) {
	follows, err := h.svc.ListFollowed(c.Request.Context(), c.GetUint(middleware.UserIDKey))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, gin.H{"follows": follows})
}

func (h *FollowHandler) FollowerCount(c *gin.Context) {
	producerID, err := strconv.ParseUint(c.Param("producerId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid producer id", "")
		return
	}

	count, err := h.svc.FollowerCount(c.Request.Context(), uint(producerID))
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"producer_id": producerID, "followers": count})
}

func (h *FollowHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProducerNotFound), errors.Is(err, domain.ErrNotFollowing):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "Follow operation failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "")
	}
}

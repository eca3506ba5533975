package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/samplemarket/internal/cart/application"
	"github.com/wyfcoding/samplemarket/internal/cart/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

// GuestSessionCookie 匿名会话 cookie 名称
const GuestSessionCookie = "guest-session"

// guestSessionMaxAge 30 天滑动窗口，每次访问刷新
const guestSessionMaxAge = 30 * 24 * 60 * 60

// CartHandler 购物车 HTTP 处理器
// 同一套语义暴露两个入口：登录用户购物车与匿名会话购物车
type CartHandler struct {
	svc *application.CartApplicationService
}

func NewCartHandler(svc *application.CartApplicationService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	cart := r.Group("/v1/cart")
	cart.Use(auth)
	{
		cart.GET("", h.withUserOwner(h.getCart))
		cart.POST("", h.withUserOwner(h.addItem))
		cart.PUT("/:lineId", h.withUserOwner(h.updateQuantity))
		cart.DELETE("/:lineId", h.withUserOwner(h.removeItem))
	}

	guest := r.Group("/v1/guest-cart")
	{
		guest.GET("", h.withGuestOwner(h.getCart))
		guest.POST("", h.withGuestOwner(h.addItem))
		guest.PUT("/:lineId", h.withGuestOwner(h.updateQuantity))
		guest.DELETE("/:lineId", h.withGuestOwner(h.removeItem))
	}
}

type ownerHandler func(c *gin.Context, owner domain.Owner)

func (h *CartHandler) withUserOwner(next ownerHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(middleware.UserIDKey)
		next(c, domain.UserOwner(strconv.FormatUint(uint64(userID), 10)))
	}
}

// withGuestOwner 懒创建匿名会话并刷新 cookie 有效期
func (h *CartHandler) withGuestOwner(next ownerHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := c.Cookie(GuestSessionCookie)
		if err != nil || session == "" {
			session = uuid.New().String()
		}
		c.SetCookie(GuestSessionCookie, session, guestSessionMaxAge, "/", "", false, true)
		next(c, domain.GuestOwner(session))
	}
}

func (h *CartHandler) getCart(c *gin.Context, owner domain.Owner) {
	view, err := h.svc.GetCart(c.Request.Context(), owner)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get cart", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to get cart", "")
		return
	}
	response.Success(c, view)
}

type addItemRequest struct {
	SampleID uint `json:"sample_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

func (h *CartHandler) addItem(c *gin.Context, owner domain.Owner) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	count, err := h.svc.AddItem(c.Request.Context(), owner, req.SampleID, req.Quantity)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"line_count": count})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *CartHandler) updateQuantity(c *gin.Context, owner domain.Owner) {
	lineID, err := strconv.ParseUint(c.Param("lineId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid line id", "")
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.svc.UpdateQuantity(c.Request.Context(), owner, uint(lineID), req.Quantity); err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": true})
}

func (h *CartHandler) removeItem(c *gin.Context, owner domain.Owner) {
	lineID, err := strconv.ParseUint(c.Param("lineId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid line id", "")
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), owner, uint(lineID)); err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}

func (h *CartHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSampleNotFound), errors.Is(err, domain.ErrLineNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrInvalidQuantity):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "Cart operation failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "")
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	carthttp "github.com/wyfcoding/samplemarket/internal/cart/interfaces/http"
	"github.com/wyfcoding/samplemarket/internal/order/application"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

// OrderHandler 结账与订单 HTTP 处理器
type OrderHandler struct {
	svc *application.CheckoutService
}

func NewOrderHandler(svc *application.CheckoutService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.POST("/v1/guest-checkout", h.GuestCheckout)
	r.GET("/v1/guest-order/:orderNo", h.GetGuestOrder)

	r.POST("/v1/checkout", auth, h.PaidCheckout)
	r.GET("/v1/orders/:orderNo", h.GetOrder)
	r.GET("/v1/orders", auth, h.ListOrders)
	r.POST("/v1/claim-purchases", auth, h.ClaimPurchases)
}

type guestCheckoutRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// GuestCheckout 游客结账：匿名会话购物车 → COMPLETED 订单 + 下载授权
func (h *OrderHandler) GuestCheckout(c *gin.Context) {
	var req guestCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	session, err := c.Cookie(carthttp.GuestSessionCookie)
	if err != nil || session == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "no guest session", "")
		return
	}

	view, err := h.svc.GuestCheckout(c.Request.Context(), cartdomain.GuestOwner(session), req.Email)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Created(c, view)
}

func (h *OrderHandler) GetGuestOrder(c *gin.Context) {
	view, err := h.svc.GetGuestOrder(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, view)
}

type paidCheckoutRequest struct {
	Email string `json:"email"`
}

// PaidCheckout 付费结账：创建支付会话与 PENDING 订单，返回跳转地址
func (h *OrderHandler) PaidCheckout(c *gin.Context) {
	var req paidCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.Email == "" {
		req.Email = c.GetString(middleware.UserEmailKey)
	}

	view, checkoutURL, err := h.svc.PaidCheckout(c.Request.Context(), c.GetUint(middleware.UserIDKey), req.Email)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Created(c, gin.H{"order": view.Order, "checkout_url": checkoutURL})
}

// GetOrder 付费流订单查询；PENDING 订单在此路径上惰性对账
func (h *OrderHandler) GetOrder(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "session_id is required", "")
		return
	}

	view, err := h.svc.GetOrder(c.Request.Context(), c.Param("orderNo"), sessionID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, view)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), c.GetUint(middleware.UserIDKey))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// ClaimPurchases 把邮箱匹配的游客订单认领到当前账号
func (h *OrderHandler) ClaimPurchases(c *gin.Context) {
	claimed, err := h.svc.ClaimGuestPurchases(c.Request.Context(),
		c.GetUint(middleware.UserIDKey), c.GetString(middleware.UserEmailKey))
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, gin.H{"claimed_orders": claimed})
}

func (h *OrderHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrEmailRequired):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrOrderNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrSessionMismatch), errors.Is(err, domain.ErrNotOwner):
		response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "Order operation failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "")
	}
}

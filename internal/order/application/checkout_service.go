package application

import (
	"context"
	"strconv"
	"time"

	cartapplication "github.com/wyfcoding/samplemarket/internal/cart/application"
	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/metrics"
)

// DefaultEntitlementTTL 授权默认有效期
const DefaultEntitlementTTL = 7 * 24 * time.Hour

// DefaultDownloadLimit 授权默认兑换预算
const DefaultDownloadLimit = 1

// Carts 结账读取购物车所依赖的能力
type Carts interface {
	GetCart(ctx context.Context, owner cartdomain.Owner) (*cartapplication.CartView, error)
}

// CheckoutService 结账编排服务
// 负责购物车到订单的转换、授权签发、付费流惰性对账与游客订单认领
type CheckoutService struct {
	repo     domain.OrderRepository
	carts    Carts
	payments domain.PaymentProvider
	metrics  *metrics.Metrics

	entitlementTTL time.Duration
	downloadLimit  int
}

func NewCheckoutService(repo domain.OrderRepository, carts Carts, payments domain.PaymentProvider, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{
		repo:           repo,
		carts:          carts,
		payments:       payments,
		metrics:        m,
		entitlementTTL: DefaultEntitlementTTL,
		downloadLimit:  DefaultDownloadLimit,
	}
}

// OrderView 订单及其授权
type OrderView struct {
	Order        *domain.Order            `json:"order"`
	Entitlements []*entdomain.Entitlement `json:"entitlements,omitempty"`
}

// GuestCheckout 游客/演示流：订单立即 COMPLETED，每行签发一条授权，最后清空购物车。
// 任一授权写入失败则整体回滚，不会留下缺授权的 COMPLETED 订单。
func (s *CheckoutService) GuestCheckout(ctx context.Context, owner cartdomain.Owner, email string) (*OrderView, error) {
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	view, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := domain.NewOrder(nil, email, view.Total, domain.OrderStatusCompleted)
	order.Items = itemsFromLines(view.Lines)
	entitlements := s.mintEntitlements(order.Items, email)

	if err := s.repo.CreateCompleted(ctx, order, entitlements, owner); err != nil {
		return nil, err
	}
	s.metrics.OrdersTotal.WithLabelValues("guest", string(order.Status)).Inc()

	logger.Info(ctx, "Guest checkout completed",
		"order_no", order.OrderNo, "lines", len(view.Lines), "total", order.Total)

	return &OrderView{Order: order, Entitlements: entitlements}, nil
}

// PaidCheckout 付费流：创建外部支付会话与 PENDING 订单；购物车保留到支付确认
func (s *CheckoutService) PaidCheckout(ctx context.Context, userID uint, email string) (*OrderView, string, error) {
	if email == "" {
		return nil, "", domain.ErrEmailRequired
	}

	owner := cartdomain.UserOwner(formatUserID(userID))
	view, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return nil, "", err
	}
	if len(view.Lines) == 0 {
		return nil, "", domain.ErrEmptyCart
	}

	order := domain.NewOrder(&userID, email, view.Total, domain.OrderStatusPending)
	order.Items = itemsFromLines(view.Lines)

	session, err := s.payments.CreateSession(ctx, order.OrderNo, order.Total, email)
	if err != nil {
		return nil, "", err
	}
	order.PaymentSessionID = session.SessionID

	if err := s.repo.CreatePending(ctx, order); err != nil {
		return nil, "", err
	}
	s.metrics.OrdersTotal.WithLabelValues("paid", string(order.Status)).Inc()

	logger.Info(ctx, "Paid checkout session created",
		"order_no", order.OrderNo, "session_id", session.SessionID)

	return &OrderView{Order: order}, session.CheckoutURL, nil
}

// GetOrder 付费流订单查询；status 为 PENDING 时向支付服务惰性对账。
// sessionID 必须与创建时存储的会话引用一致，不一致按 Forbidden 处理。
func (s *CheckoutService) GetOrder(ctx context.Context, orderNo, sessionID string) (*OrderView, error) {
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.PaymentSessionID == "" || order.PaymentSessionID != sessionID {
		return nil, domain.ErrSessionMismatch
	}

	if order.Status == domain.OrderStatusPending {
		paid, err := s.payments.SessionPaid(ctx, sessionID)
		if err != nil {
			// 支付服务不可用时维持 PENDING，下一次读取重试
			logger.Warn(ctx, "Payment status check failed", "order_no", orderNo, "error", err)
		} else if paid {
			if err := s.completePaidOrder(ctx, order); err != nil {
				return nil, err
			}
		}
	}

	entitlements, err := s.repo.ListEntitlements(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderView{Order: order, Entitlements: entitlements}, nil
}

// completePaidOrder 授权按下单时的订单行快照签发，与当前购物车内容无关
func (s *CheckoutService) completePaidOrder(ctx context.Context, order *domain.Order) error {
	owner := cartdomain.UserOwner(formatUserID(*order.UserID))

	entitlements := s.mintEntitlements(order.Items, order.CustomerEmail)
	for _, e := range entitlements {
		e.OrderID = order.ID
	}

	if err := s.repo.CompleteWithEntitlements(ctx, order.ID, entitlements, owner); err != nil {
		return err
	}
	order.Status = domain.OrderStatusCompleted
	s.metrics.OrdersTotal.WithLabelValues("paid", string(order.Status)).Inc()

	logger.Info(ctx, "Pending order reconciled to completed", "order_no", order.OrderNo)
	return nil
}

// GetGuestOrder 游客订单查询，返回订单与下载授权
func (s *CheckoutService) GetGuestOrder(ctx context.Context, orderNo string) (*OrderView, error) {
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	entitlements, err := s.repo.ListEntitlements(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderView{Order: order, Entitlements: entitlements}, nil
}

// ListOrders 列出账号名下订单
func (s *CheckoutService) ListOrders(ctx context.Context, userID uint) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ClaimGuestPurchases 游客购买认领：邮箱精确匹配、仅改写无归属订单
func (s *CheckoutService) ClaimGuestPurchases(ctx context.Context, userID uint, email string) (int64, error) {
	claimed, err := s.repo.ClaimGuestOrders(ctx, email, userID)
	if err != nil {
		return 0, err
	}
	if claimed > 0 {
		logger.Info(ctx, "Guest purchases claimed", "user_id", userID, "orders", claimed)
	}
	return claimed, nil
}

// mintEntitlements 为每个订单行签发一条授权；OrderID 在仓储事务内回填
func (s *CheckoutService) mintEntitlements(items []domain.OrderItem, email string) []*entdomain.Entitlement {
	entitlements := make([]*entdomain.Entitlement, 0, len(items))
	for _, item := range items {
		entitlements = append(entitlements, entdomain.NewEntitlement(0, item.SampleID, email, s.entitlementTTL, s.downloadLimit))
	}
	return entitlements
}

// itemsFromLines 结账时刻的购物车行快照
func itemsFromLines(lines []cartdomain.Line) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			SampleID: line.SampleID,
			Title:    line.Title,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}
	return items
}

func formatUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

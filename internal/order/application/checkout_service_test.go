package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartapplication "github.com/wyfcoding/samplemarket/internal/cart/application"
	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
	"github.com/wyfcoding/samplemarket/pkg/metrics"
	"gorm.io/gorm"
)

// MockOrderRepository implements domain.OrderRepository in memory
type MockOrderRepository struct {
	nextID       uint
	orders       map[string]*domain.Order
	entitlements map[uint][]*entdomain.Entitlement
	cleared      []cartdomain.Owner
	createErr    error
	claimed      int64
	claimedEmail string
	claimedUser  uint
}

func newMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		nextID:       1,
		orders:       map[string]*domain.Order{},
		entitlements: map[uint][]*entdomain.Entitlement{},
	}
}

func (m *MockOrderRepository) CreateCompleted(_ context.Context, order *domain.Order, ents []*entdomain.Entitlement, clear cartdomain.Owner) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = m.nextID
	m.nextID++
	for _, e := range ents {
		e.OrderID = order.ID
	}
	m.orders[order.OrderNo] = order
	m.entitlements[order.ID] = ents
	m.cleared = append(m.cleared, clear)
	return nil
}

func (m *MockOrderRepository) CreatePending(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = m.nextID
	m.nextID++
	m.orders[order.OrderNo] = order
	return nil
}

func (m *MockOrderRepository) CompleteWithEntitlements(_ context.Context, orderID uint, ents []*entdomain.Entitlement, clear cartdomain.Owner) error {
	for _, o := range m.orders {
		if o.ID == orderID {
			if o.Status != domain.OrderStatusPending {
				return nil
			}
			o.Status = domain.OrderStatusCompleted
			m.entitlements[orderID] = ents
			m.cleared = append(m.cleared, clear)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *MockOrderRepository) GetByOrderNo(_ context.Context, orderNo string) (*domain.Order, error) {
	o, ok := m.orders[orderNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) ListByUser(_ context.Context, userID uint) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.IsOwnedBy(userID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) ListEntitlements(_ context.Context, orderID uint) ([]*entdomain.Entitlement, error) {
	return m.entitlements[orderID], nil
}

func (m *MockOrderRepository) ClaimGuestOrders(_ context.Context, email string, userID uint) (int64, error) {
	m.claimedEmail = email
	m.claimedUser = userID
	return m.claimed, nil
}

// MockCarts implements the Carts dependency
type MockCarts struct {
	views map[cartdomain.Owner]*cartapplication.CartView
}

func newMockCarts() *MockCarts {
	return &MockCarts{views: map[cartdomain.Owner]*cartapplication.CartView{}}
}

func (m *MockCarts) put(owner cartdomain.Owner, lines ...cartdomain.Line) {
	m.views[owner] = &cartapplication.CartView{Lines: lines, Total: cartdomain.Total(lines)}
}

func (m *MockCarts) GetCart(_ context.Context, owner cartdomain.Owner) (*cartapplication.CartView, error) {
	if v, ok := m.views[owner]; ok {
		return v, nil
	}
	return &cartapplication.CartView{Total: decimal.Zero}, nil
}

// MockPayments implements domain.PaymentProvider
type MockPayments struct {
	session    *domain.PaymentSession
	createErr  error
	paid       bool
	paidErr    error
	paidCalls  int
	lastAmount decimal.Decimal
}

func (m *MockPayments) CreateSession(_ context.Context, _ string, amount decimal.Decimal, _ string) (*domain.PaymentSession, error) {
	m.lastAmount = amount
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.session, nil
}

func (m *MockPayments) SessionPaid(_ context.Context, _ string) (bool, error) {
	m.paidCalls++
	return m.paid, m.paidErr
}

func line(sampleID uint, price string, qty int) cartdomain.Line {
	return cartdomain.Line{
		LineID:   sampleID,
		SampleID: sampleID,
		Title:    "sample",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func TestGuestCheckout_CompletesAndIssuesEntitlements(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	owner := cartdomain.GuestOwner("sess-abc")
	carts.put(owner, line(1, "9.99", 2), line(2, "4.50", 1))
	svc := NewCheckoutService(repo, carts, &MockPayments{}, metrics.New("test"))

	view, err := svc.GuestCheckout(context.Background(), owner, "buyer@example.com")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, view.Order.Status)
	assert.Nil(t, view.Order.UserID)
	// 24.48 + 10% 税
	assert.True(t, view.Order.Subtotal.Equal(decimal.RequireFromString("24.48")), "subtotal %s", view.Order.Subtotal)
	assert.True(t, view.Order.Tax.Equal(decimal.RequireFromString("2.448")), "tax %s", view.Order.Tax)
	assert.True(t, view.Order.Total.Equal(decimal.RequireFromString("26.928")), "total %s", view.Order.Total)

	require.Len(t, view.Entitlements, 2, "one entitlement per cart line")
	for _, e := range view.Entitlements {
		assert.Equal(t, view.Order.ID, e.OrderID)
		assert.Equal(t, "buyer@example.com", e.CustomerEmail)
		assert.Equal(t, 1, e.DownloadLimit)
		assert.WithinDuration(t, time.Now().Add(DefaultEntitlementTTL), e.ExpiresAt, time.Minute)
	}
	require.Len(t, repo.cleared, 1)
	assert.Equal(t, owner, repo.cleared[0])
}

func TestGuestCheckout_RequiresEmail(t *testing.T) {
	svc := NewCheckoutService(newMockOrderRepository(), newMockCarts(), &MockPayments{}, metrics.New("test"))

	_, err := svc.GuestCheckout(context.Background(), cartdomain.GuestOwner("sess-abc"), "")

	assert.ErrorIs(t, err, domain.ErrEmailRequired)
}

func TestGuestCheckout_EmptyCart(t *testing.T) {
	svc := NewCheckoutService(newMockOrderRepository(), newMockCarts(), &MockPayments{}, metrics.New("test"))

	_, err := svc.GuestCheckout(context.Background(), cartdomain.GuestOwner("sess-abc"), "buyer@example.com")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestGuestCheckout_RepositoryFailurePropagates(t *testing.T) {
	repo := newMockOrderRepository()
	repo.createErr = errors.New("tx rolled back")
	carts := newMockCarts()
	owner := cartdomain.GuestOwner("sess-abc")
	carts.put(owner, line(1, "9.99", 1))
	svc := NewCheckoutService(repo, carts, &MockPayments{}, metrics.New("test"))

	_, err := svc.GuestCheckout(context.Background(), owner, "buyer@example.com")

	require.Error(t, err)
	assert.Empty(t, repo.orders)
	assert.Empty(t, repo.cleared, "cart must survive a failed checkout")
}

func TestPaidCheckout_CreatesPendingWithSession(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	carts.put(cartdomain.UserOwner("7"), line(1, "9.99", 2))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "https://pay.example.com/cs_123"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	view, url, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_123", url)
	assert.Equal(t, domain.OrderStatusPending, view.Order.Status)
	assert.Equal(t, "cs_123", view.Order.PaymentSessionID)
	require.NotNil(t, view.Order.UserID)
	assert.Equal(t, uint(7), *view.Order.UserID)
	assert.True(t, payments.lastAmount.Equal(view.Order.Total), "session amount must be the taxed total")
	assert.Empty(t, repo.cleared, "cart is kept until payment confirms")
}

func TestPaidCheckout_ProviderFailureLeavesNoOrder(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	carts.put(cartdomain.UserOwner("7"), line(1, "9.99", 1))
	payments := &MockPayments{createErr: errors.New("provider down")}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	_, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")

	require.Error(t, err)
	assert.Empty(t, repo.orders)
}

func TestGetOrder_SessionMismatchIsForbidden(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	carts.put(cartdomain.UserOwner("7"), line(1, "9.99", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	view, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), view.Order.OrderNo, "cs_other")
	assert.ErrorIs(t, err, domain.ErrSessionMismatch)

	_, err = svc.GetOrder(context.Background(), view.Order.OrderNo, "")
	assert.ErrorIs(t, err, domain.ErrSessionMismatch, "empty session id never matches")
}

func TestGetOrder_LazyReconciliation(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	carts.put(cartdomain.UserOwner("7"), line(1, "9.99", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	created, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)

	// 未支付：读取后仍为 PENDING，无授权
	view, err := svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, view.Order.Status)
	assert.Empty(t, view.Entitlements)

	// 支付完成：读取触发对账，签发授权并清空购物车
	payments.paid = true
	view, err = svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, view.Order.Status)
	require.Len(t, view.Entitlements, 1)
	assert.Equal(t, created.Order.ID, view.Entitlements[0].OrderID)
	require.Len(t, repo.cleared, 1)
	assert.Equal(t, cartdomain.UserOwner("7"), repo.cleared[0])

	// 已完成订单不再触发支付查询
	calls := payments.paidCalls
	_, err = svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, calls, payments.paidCalls)
}

func TestGetOrder_EntitlementsFollowOrderSnapshot(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	owner := cartdomain.UserOwner("7")
	carts.put(owner, line(1, "9.99", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	created, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, created.Order.Items, 1, "order carries the cart snapshot")

	// 支付等待期间购物车被清空，授权仍按下单时的订单行签发
	carts.put(owner)
	payments.paid = true

	view, err := svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, view.Order.Status)
	require.Len(t, view.Entitlements, 1)
	assert.Equal(t, uint(1), view.Entitlements[0].SampleID)
}

func TestGetOrder_CartGrowthDoesNotInflateEntitlements(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	owner := cartdomain.UserOwner("7")
	carts.put(owner, line(1, "9.99", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	created, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)

	// 支付等待期间继续加购不会多发授权
	carts.put(owner, line(1, "9.99", 1), line(2, "4.50", 1), line(3, "1.00", 1))
	payments.paid = true

	view, err := svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	require.Len(t, view.Entitlements, 1)
	assert.Equal(t, uint(1), view.Entitlements[0].SampleID)
}

func TestCheckout_CountsOrders(t *testing.T) {
	m := metrics.New("test")
	repo := newMockOrderRepository()
	carts := newMockCarts()
	guest := cartdomain.GuestOwner("sess-abc")
	carts.put(guest, line(1, "9.99", 1))
	carts.put(cartdomain.UserOwner("7"), line(2, "4.50", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, m)

	_, err := svc.GuestCheckout(context.Background(), guest, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("guest", string(domain.OrderStatusCompleted))))

	created, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("paid", string(domain.OrderStatusPending))))

	payments.paid = true
	_, err = svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("paid", string(domain.OrderStatusCompleted))))
}

func TestGetOrder_ProviderFailureKeepsPending(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	carts.put(cartdomain.UserOwner("7"), line(1, "9.99", 1))
	payments := &MockPayments{session: &domain.PaymentSession{SessionID: "cs_123", CheckoutURL: "u"}}
	svc := NewCheckoutService(repo, carts, payments, metrics.New("test"))

	created, _, err := svc.PaidCheckout(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)

	payments.paid = true
	payments.paidErr = errors.New("provider timeout")

	view, err := svc.GetOrder(context.Background(), created.Order.OrderNo, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, view.Order.Status, "status check failure must not complete the order")
}

func TestGetOrder_UnknownOrder(t *testing.T) {
	svc := NewCheckoutService(newMockOrderRepository(), newMockCarts(), &MockPayments{}, metrics.New("test"))

	_, err := svc.GetOrder(context.Background(), "no-such-order", "cs_123")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetGuestOrder(t *testing.T) {
	repo := newMockOrderRepository()
	carts := newMockCarts()
	owner := cartdomain.GuestOwner("sess-abc")
	carts.put(owner, line(1, "9.99", 1))
	svc := NewCheckoutService(repo, carts, &MockPayments{}, metrics.New("test"))

	created, err := svc.GuestCheckout(context.Background(), owner, "buyer@example.com")
	require.NoError(t, err)

	view, err := svc.GetGuestOrder(context.Background(), created.Order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, created.Order.OrderNo, view.Order.OrderNo)
	assert.Len(t, view.Entitlements, 1)

	_, err = svc.GetGuestOrder(context.Background(), "no-such-order")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestClaimGuestPurchases_PassesThrough(t *testing.T) {
	repo := newMockOrderRepository()
	repo.claimed = 3
	svc := NewCheckoutService(repo, newMockCarts(), &MockPayments{}, metrics.New("test"))

	claimed, err := svc.ClaimGuestPurchases(context.Background(), 7, "Buyer@Example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(3), claimed)
	assert.Equal(t, "Buyer@Example.com", repo.claimedEmail, "email goes through unnormalized")
	assert.Equal(t, uint(7), repo.claimedUser)
}

package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，必须限制为单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&cartdomain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&entdomain.Entitlement{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, email string, userID *uint) *domain.Order {
	t.Helper()
	o := domain.NewOrder(userID, email, decimal.RequireFromString("9.99"), domain.OrderStatusCompleted)
	require.NoError(t, db.Create(o).Error)
	e := entdomain.NewEntitlement(o.ID, 1, email, time.Hour, 1)
	require.NoError(t, db.Create(e).Error)
	return o
}

func newCompletedOrder(email string) *domain.Order {
	o := domain.NewOrder(nil, email, decimal.RequireFromString("9.99"), domain.OrderStatusCompleted)
	o.Items = []domain.OrderItem{{
		SampleID: 1,
		Title:    "808 Kick",
		Price:    decimal.RequireFromString("9.99"),
		Quantity: 1,
	}}
	return o
}

func TestCreateCompleted_PersistsSnapshotAndClearsCart(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	owner := cartdomain.GuestOwner("sess-abc")
	require.NoError(t, db.Create(&cartdomain.CartItem{
		OwnerKind: owner.Kind, OwnerRef: owner.Ref, SampleID: 1, Quantity: 1,
	}).Error)

	order := newCompletedOrder("buyer@example.com")
	ents := []*entdomain.Entitlement{entdomain.NewEntitlement(0, 1, "buyer@example.com", time.Hour, 1)}
	require.NoError(t, repo.CreateCompleted(ctx, order, ents, owner))

	got, err := repo.GetByOrderNo(ctx, order.OrderNo)
	require.NoError(t, err)
	require.Len(t, got.Items, 1, "order line snapshot is persisted with the order")
	assert.Equal(t, "808 Kick", got.Items[0].Title)

	list, err := repo.ListEntitlements(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].OrderID)

	var cartRows int64
	require.NoError(t, db.Model(&cartdomain.CartItem{}).Count(&cartRows).Error)
	assert.Equal(t, int64(0), cartRows)
}

func TestCompleteWithEntitlements_SecondCallIsNoop(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	owner := cartdomain.UserOwner("7")

	userID := uint(7)
	order := domain.NewOrder(&userID, "buyer@example.com", decimal.RequireFromString("9.99"), domain.OrderStatusPending)
	order.Items = newCompletedOrder("buyer@example.com").Items
	require.NoError(t, repo.CreatePending(ctx, order))

	mint := func() []*entdomain.Entitlement {
		return []*entdomain.Entitlement{entdomain.NewEntitlement(0, 1, "buyer@example.com", time.Hour, 1)}
	}
	require.NoError(t, repo.CompleteWithEntitlements(ctx, order.ID, mint(), owner))
	// 并发对账重入：已完成的订单不再签发授权
	require.NoError(t, repo.CompleteWithEntitlements(ctx, order.ID, mint(), owner))

	got, err := repo.GetByOrderNo(ctx, order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, got.Status)

	list, err := repo.ListEntitlements(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClaimGuestOrders_ExactEmailAndUnownedOnly(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	guest := seedOrder(t, db, "buyer@example.com", nil)
	cased := seedOrder(t, db, "Buyer@Example.com", nil)
	ownerID := uint(3)
	owned := seedOrder(t, db, "buyer@example.com", &ownerID)

	claimed, err := repo.ClaimGuestOrders(ctx, "buyer@example.com", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claimed)

	var gotGuest domain.Order
	require.NoError(t, db.First(&gotGuest, guest.ID).Error)
	require.NotNil(t, gotGuest.UserID)
	assert.Equal(t, uint(7), *gotGuest.UserID)

	// 大小写不同的邮箱属于另一名买家
	var gotCased domain.Order
	require.NoError(t, db.First(&gotCased, cased.ID).Error)
	assert.Nil(t, gotCased.UserID)

	// 已归属订单不会被改写
	var gotOwned domain.Order
	require.NoError(t, db.First(&gotOwned, owned.ID).Error)
	require.NotNil(t, gotOwned.UserID)
	assert.Equal(t, ownerID, *gotOwned.UserID)
}

func TestClaimGuestOrders_SecondClaimFindsNothing(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	seedOrder(t, db, "buyer@example.com", nil)

	claimed, err := repo.ClaimGuestOrders(ctx, "buyer@example.com", 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), claimed)

	claimed, err = repo.ClaimGuestOrders(ctx, "buyer@example.com", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(0), claimed)
}

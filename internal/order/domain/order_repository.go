package domain

import (
	"context"

	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
)

// OrderRepository 订单仓储接口
// 结账落库为全或无：订单、授权与购物车清空在同一事务内提交
type OrderRepository interface {
	// CreateCompleted 游客/演示流：订单直接 COMPLETED，同事务写入授权并清空购物车
	CreateCompleted(ctx context.Context, order *Order, entitlements []*entdomain.Entitlement, clear cartdomain.Owner) error
	// CreatePending 付费流：仅创建 PENDING 订单
	CreatePending(ctx context.Context, order *Order) error
	// CompleteWithEntitlements 付费流对账：PENDING→COMPLETED，同事务写入授权并清空购物车
	CompleteWithEntitlements(ctx context.Context, orderID uint, entitlements []*entdomain.Entitlement, clear cartdomain.Owner) error
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)
	// ListEntitlements 取订单下全部授权
	ListEntitlements(ctx context.Context, orderID uint) ([]*entdomain.Entitlement, error)
	// ClaimGuestOrders 把授权邮箱精确匹配且无归属账号的订单批量改归给定账号，返回改写订单数
	ClaimGuestOrders(ctx context.Context, email string, userID uint) (int64, error)
}

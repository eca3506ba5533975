package mysql

import (
	"context"

	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
	"gorm.io/gorm"
)

type orderRepository struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

// CreateCompleted 订单、授权与购物车清空在同一事务内，任一失败整体回滚
func (r *orderRepository) CreateCompleted(ctx context.Context, order *domain.Order, entitlements []*entdomain.Entitlement, clear cartdomain.Owner) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, e := range entitlements {
			e.OrderID = order.ID
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return tx.Where("owner_kind = ? AND owner_ref = ?", clear.Kind, clear.Ref).
			Delete(&cartdomain.CartItem{}).Error
	})
}

func (r *orderRepository) CreatePending(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CompleteWithEntitlements 状态转移仅作用于仍为 PENDING 的订单，避免重复完成
func (r *orderRepository) CompleteWithEntitlements(ctx context.Context, orderID uint, entitlements []*entdomain.Entitlement, clear cartdomain.Owner) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", orderID, domain.OrderStatusPending).
			Update("status", domain.OrderStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已被并发读取完成过，授权已存在
			return nil
		}
		for _, e := range entitlements {
			e.OrderID = orderID
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return tx.Where("owner_kind = ? AND owner_ref = ?", clear.Kind, clear.Ref).
			Delete(&cartdomain.CartItem{}).Error
	})
}

func (r *orderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_no = ?", orderNo).First(&order).Error
	return &order, err
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListEntitlements(ctx context.Context, orderID uint) ([]*entdomain.Entitlement, error) {
	var list []*entdomain.Entitlement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&list).Error
	return list, err
}

// ClaimGuestOrders 仅改归无归属账号的订单；邮箱逐字节精确比较在应用内完成，
// 不依赖数据库整理规则（MySQL 默认整理规则不区分大小写）
func (r *orderRepository) ClaimGuestOrders(ctx context.Context, email string, userID uint) (int64, error) {
	type candidate struct {
		OrderID       uint
		CustomerEmail string
	}
	var candidates []candidate
	err := r.db.WithContext(ctx).
		Model(&entdomain.Entitlement{}).
		Distinct("entitlements.order_id", "entitlements.customer_email").
		Joins("JOIN orders ON orders.id = entitlements.order_id").
		Where("entitlements.customer_email = ? AND orders.user_id IS NULL", email).
		Scan(&candidates).Error
	if err != nil {
		return 0, err
	}

	var orderIDs []uint
	for _, c := range candidates {
		if c.CustomerEmail == email {
			orderIDs = append(orderIDs, c.OrderID)
		}
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id IN ? AND user_id IS NULL", orderIDs).
		Update("user_id", userID)
	return res.RowsAffected, res.Error
}

// Package domain 包含订单服务的领域模型
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// TaxRate 固定税率 10%
var TaxRate = decimal.NewFromFloat(0.1)

// Order 订单实体
// 结账时由购物车一次性生成，金额创建后不再重算
type Order struct {
	gorm.Model
	// 对外订单号
	OrderNo string `gorm:"column:order_no;type:varchar(36);uniqueIndex;not null" json:"order_no"`
	// 归属账号，游客订单为空
	UserID *uint `gorm:"column:user_id;index" json:"user_id,omitempty"`
	// 买家邮箱
	CustomerEmail string `gorm:"column:customer_email;type:varchar(255);index;not null" json:"customer_email"`
	// 小计
	Subtotal decimal.Decimal `gorm:"column:subtotal;type:decimal(12,3);not null" json:"subtotal"`
	// 税额
	Tax decimal.Decimal `gorm:"column:tax;type:decimal(12,3);not null" json:"tax"`
	// 总额 = 小计 + 税额
	Total decimal.Decimal `gorm:"column:total;type:decimal(12,3);not null" json:"total"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// 外部支付会话引用（付费流）
	PaymentSessionID string `gorm:"column:payment_session_id;type:varchar(128);index" json:"-"`
	// 下单时的购物车行快照，授权按此签发而非当前购物车
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行，结账时从购物车快照而来，之后不变
type OrderItem struct {
	ID       uint            `gorm:"primarykey" json:"-"`
	OrderID  uint            `gorm:"column:order_id;index;not null" json:"-"`
	SampleID uint            `gorm:"column:sample_id;not null" json:"sample_id"`
	Title    string          `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Price    decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Quantity int             `gorm:"column:quantity;not null" json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }

// NewOrder 创建订单并计算金额：tax = subtotal * TaxRate，total = subtotal + tax
func NewOrder(userID *uint, email string, subtotal decimal.Decimal, status OrderStatus) *Order {
	tax := subtotal.Mul(TaxRate)
	return &Order{
		OrderNo:       uuid.New().String(),
		UserID:        userID,
		CustomerEmail: email,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		Status:        status,
	}
}

// IsOwnedBy 判断订单是否归属给定账号
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerKind 购物车归属身份类型
type OwnerKind string

const (
	OwnerUser  OwnerKind = "USER"
	OwnerGuest OwnerKind = "GUEST"
)

// Owner 购物车归属身份，注册用户或匿名会话之一
type Owner struct {
	Kind OwnerKind
	Ref  string
}

func UserOwner(userID string) Owner { return Owner{Kind: OwnerUser, Ref: userID} }

func GuestOwner(session string) Owner { return Owner{Kind: OwnerGuest, Ref: session} }

// CartItem 购物车行，(owner, sample) 上有唯一索引，重复加购累加数量。
// 删除是物理删除：索引槽位随行释放，同一样本之后可重新加购。
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"line_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	OwnerKind OwnerKind `gorm:"column:owner_kind;type:varchar(10);uniqueIndex:idx_owner_sample;not null" json:"owner_kind"`
	OwnerRef  string    `gorm:"column:owner_ref;type:varchar(64);uniqueIndex:idx_owner_sample;not null" json:"-"`
	SampleID  uint      `gorm:"column:sample_id;uniqueIndex:idx_owner_sample;not null" json:"sample_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
}

func (CartItem) TableName() string { return "cart_items" }

// Line 购物车行与实时目录数据的联合视图，价格永远取目录当前价
type Line struct {
	LineID   uint            `json:"line_id"`
	SampleID uint            `json:"sample_id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal 单行小计
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total 读取时计算的购物车总价
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

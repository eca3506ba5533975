package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentSession 外部支付会话
type PaymentSession struct {
	SessionID   string
	CheckoutURL string
}

// PaymentProvider 外部支付会话服务
// 创建会话并在读取路径上查询当前支付状态（惰性对账）
type PaymentProvider interface {
	CreateSession(ctx context.Context, orderNo string, amount decimal.Decimal, email string) (*PaymentSession, error)
	SessionPaid(ctx context.Context, sessionID string) (bool, error)
}

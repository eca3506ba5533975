package domain

import "context"

type EntitlementRepository interface {
	Save(ctx context.Context, e *Entitlement) error
	GetByToken(ctx context.Context, token string) (*Entitlement, error)
	ListByEmail(ctx context.Context, email string) ([]*Entitlement, error)
	// RedeemIncrement 条件自增兑换计数，仅当计数仍低于预算时生效；
	// 返回受影响行数，0 表示预算已被并发耗尽
	RedeemIncrement(ctx context.Context, token string) (int64, error)
}

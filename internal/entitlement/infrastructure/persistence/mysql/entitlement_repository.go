package mysql

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"gorm.io/gorm"
)

type entitlementRepository struct{ db *gorm.DB }

func NewEntitlementRepository(db *gorm.DB) domain.EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) Save(ctx context.Context, e *domain.Entitlement) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *entitlementRepository) GetByToken(ctx context.Context, token string) (*domain.Entitlement, error) {
	var e domain.Entitlement
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&e).Error
	return &e, err
}

func (r *entitlementRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Entitlement, error) {
	var list []*domain.Entitlement
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// RedeemIncrement 单条条件更新，预算耗尽时影响行数为 0
func (r *entitlementRepository) RedeemIncrement(ctx context.Context, token string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Entitlement{}).
		Where("token = ? AND download_count < download_limit", token).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	return res.RowsAffected, res.Error
}

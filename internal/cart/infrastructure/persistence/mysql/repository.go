package mysql

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/samplemarket/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

// Upsert 依赖 (owner_kind, owner_ref, sample_id) 唯一索引，冲突时累加数量
func (r *cartRepository) Upsert(ctx context.Context, owner domain.Owner, sampleID uint, qty int) error {
	item := domain.CartItem{
		OwnerKind: owner.Kind,
		OwnerRef:  owner.Ref,
		SampleID:  sampleID,
		Quantity:  qty,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_kind"}, {Name: "owner_ref"}, {Name: "sample_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", qty),
		}),
	}).Create(&item).Error
}

func (r *cartRepository) GetLine(ctx context.Context, lineID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).First(&item, lineID).Error
	return &item, err
}

func (r *cartRepository) ListLines(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	var lines []domain.Line
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id AS line_id, cart_items.sample_id, samples.title, samples.price, cart_items.quantity").
		Joins("JOIN samples ON samples.id = cart_items.sample_id AND samples.deleted_at IS NULL").
		Where("cart_items.owner_kind = ? AND cart_items.owner_ref = ?", owner.Kind, owner.Ref).
		Order("cart_items.created_at").
		Scan(&lines).Error
	return lines, err
}

func (r *cartRepository) CountLines(ctx context.Context, owner domain.Owner) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("owner_kind = ? AND owner_ref = ?", owner.Kind, owner.Ref).
		Count(&count).Error
	return count, err
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, lineID uint, qty int) error {
	return r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", qty).Error
}

func (r *cartRepository) DeleteLine(ctx context.Context, lineID uint) error {
	return r.db.WithContext(ctx).Delete(&domain.CartItem{}, lineID).Error
}

func (r *cartRepository) Clear(ctx context.Context, owner domain.Owner) error {
	return r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_ref = ?", owner.Kind, owner.Ref).
		Delete(&domain.CartItem{}).Error
}

func (r *cartRepository) SampleExists(ctx context.Context, sampleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalogdomain.Sample{}).
		Where("id = ?", sampleID).
		Count(&count).Error
	return count > 0, err
}

package mysql

import (
	"context"

	authdomain "github.com/wyfcoding/samplemarket/internal/auth/domain"
	"github.com/wyfcoding/samplemarket/internal/follow/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type followRepository struct{ db *gorm.DB }

func NewFollowRepository(db *gorm.DB) domain.FollowRepository {
	return &followRepository{db: db}
}

// Save 唯一索引保证重复关注幂等
func (r *followRepository) Save(ctx context.Context, follow *domain.Follow) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "producer_id"}},
		DoNothing: true,
	}).Create(follow).Error
}

func (r *followRepository) Delete(ctx context.Context, userID, producerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND producer_id = ?", userID, producerID).
		Delete(&domain.Follow{})
	return res.RowsAffected, res.Error
}

func (r *followRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Follow, error) {
	var follows []*domain.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) CountByProducer(ctx context.Context, producerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("producer_id = ?", producerID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) ProducerExists(ctx context.Context, producerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&authdomain.User{}).
		Where("id = ? AND role = ?", producerID, authdomain.RoleProducer).
		Count(&count).Error
	return count > 0, err
}

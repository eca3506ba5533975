package mysql

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/catalog/domain"
	"gorm.io/gorm"
)

type catalogRepository struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) SavePack(ctx context.Context, pack *domain.Pack) error {
	return r.db.WithContext(ctx).Save(pack).Error
}

func (r *catalogRepository) GetPack(ctx context.Context, id uint) (*domain.Pack, error) {
	var pack domain.Pack
	err := r.db.WithContext(ctx).Preload("Samples").First(&pack, id).Error
	return &pack, err
}

func (r *catalogRepository) ListPacks(ctx context.Context, genre string, offset, limit int) ([]*domain.Pack, int64, error) {
	var packs []*domain.Pack
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Pack{})
	if genre != "" {
		query = query.Where("genre = ?", genre)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&packs).Error
	return packs, total, err
}

func (r *catalogRepository) SaveSample(ctx context.Context, sample *domain.Sample) error {
	return r.db.WithContext(ctx).Save(sample).Error
}

func (r *catalogRepository) GetSample(ctx context.Context, id uint) (*domain.Sample, error) {
	var sample domain.Sample
	err := r.db.WithContext(ctx).First(&sample, id).Error
	return &sample, err
}

func (r *catalogRepository) ListSamples(ctx context.Context, packID *uint, offset, limit int) ([]*domain.Sample, int64, error) {
	var samples []*domain.Sample
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Sample{})
	if packID != nil {
		query = query.Where("pack_id = ?", *packID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&samples).Error
	return samples, total, err
}

func (r *catalogRepository) DeleteSample(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Sample{}, id).Error
}

func (r *catalogRepository) SampleHasEntitlements(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("entitlements").Where("sample_id = ?", id).Count(&count).Error
	return count > 0, err
}

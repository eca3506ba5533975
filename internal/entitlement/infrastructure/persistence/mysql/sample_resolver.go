package mysql

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"gorm.io/gorm"
)

type sampleResolver struct{ db *gorm.DB }

// NewSampleResolver 从目录表解析样本对象 key
func NewSampleResolver(db *gorm.DB) domain.SampleResolver {
	return &sampleResolver{db: db}
}

func (r *sampleResolver) ObjectKey(ctx context.Context, sampleID uint) (string, error) {
	var objectKey string
	err := r.db.WithContext(ctx).
		Table("samples").
		Select("object_key").
		Where("id = ? AND deleted_at IS NULL", sampleID).
		Scan(&objectKey).Error
	if err != nil {
		return "", err
	}
	if objectKey == "" {
		return "", gorm.ErrRecordNotFound
	}
	return objectKey, nil
}

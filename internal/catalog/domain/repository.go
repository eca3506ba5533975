package domain

import "context"

type CatalogRepository interface {
	SavePack(ctx context.Context, pack *Pack) error
	GetPack(ctx context.Context, id uint) (*Pack, error)
	ListPacks(ctx context.Context, genre string, offset, limit int) ([]*Pack, int64, error)

	SaveSample(ctx context.Context, sample *Sample) error
	GetSample(ctx context.Context, id uint) (*Sample, error)
	ListSamples(ctx context.Context, packID *uint, offset, limit int) ([]*Sample, int64, error)
	DeleteSample(ctx context.Context, id uint) error
	// SampleHasEntitlements 判断样本是否已被购买（存在下载授权）
	SampleHasEntitlements(ctx context.Context, id uint) (bool, error)
}

package application

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/catalog/domain"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo domain.CatalogRepository
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(repo domain.CatalogRepository) *CatalogQueryService {
	return &CatalogQueryService{repo: repo}
}

// GetPack 根据ID获取样本包（含样本列表）
func (s *CatalogQueryService) GetPack(ctx context.Context, id uint) (*domain.Pack, error) {
	pack, err := s.repo.GetPack(ctx, id)
	if err != nil {
		return nil, domain.ErrPackNotFound
	}
	return pack, nil
}

// ListPacks 列出样本包
func (s *CatalogQueryService) ListPacks(ctx context.Context, genre string, page, size int) ([]*domain.Pack, int64, error) {
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPacks(ctx, genre, offset, size)
}

// GetSample 根据ID获取样本
func (s *CatalogQueryService) GetSample(ctx context.Context, id uint) (*domain.Sample, error) {
	sample, err := s.repo.GetSample(ctx, id)
	if err != nil {
		return nil, domain.ErrSampleNotFound
	}
	return sample, nil
}

// ListSamples 列出样本
func (s *CatalogQueryService) ListSamples(ctx context.Context, packID *uint, page, size int) ([]*domain.Sample, int64, error) {
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListSamples(ctx, packID, offset, size)
}

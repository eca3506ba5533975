package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/samplemarket/internal/catalog/domain"
)

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo domain.CatalogRepository
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(repo domain.CatalogRepository) *CatalogCommandService {
	return &CatalogCommandService{repo: repo}
}

// CreatePackCommand 创建样本包命令
type CreatePackCommand struct {
	Title       string
	Description string
	Genre       string
	Price       decimal.Decimal
	CoverKey    string
	ProducerID  uint
}

// CreatePack 创建样本包
func (s *CatalogCommandService) CreatePack(ctx context.Context, cmd CreatePackCommand) (*domain.Pack, error) {
	if cmd.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	pack := &domain.Pack{
		Title:       cmd.Title,
		Description: cmd.Description,
		Genre:       cmd.Genre,
		Price:       cmd.Price,
		CoverKey:    cmd.CoverKey,
		ProducerID:  cmd.ProducerID,
	}
	if err := s.repo.SavePack(ctx, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

// CreateSampleCommand 创建样本命令
type CreateSampleCommand struct {
	Title      string
	Price      decimal.Decimal
	BPM        int
	MusicalKey string
	ObjectKey  string
	PackID     *uint
	ProducerID uint
}

// CreateSample 创建样本
func (s *CatalogCommandService) CreateSample(ctx context.Context, cmd CreateSampleCommand) (*domain.Sample, error) {
	if cmd.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	sample := &domain.Sample{
		Title:      cmd.Title,
		Price:      cmd.Price,
		BPM:        cmd.BPM,
		MusicalKey: cmd.MusicalKey,
		ObjectKey:  cmd.ObjectKey,
		PackID:     cmd.PackID,
		ProducerID: cmd.ProducerID,
	}
	if err := s.repo.SaveSample(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// UpdateSampleCommand 更新样本命令
type UpdateSampleCommand struct {
	SampleID   uint
	ProducerID uint
	Title      string
	Price      decimal.Decimal
	BPM        int
	MusicalKey string
}

// UpdateSample 更新样本，校验所有权
func (s *CatalogCommandService) UpdateSample(ctx context.Context, cmd UpdateSampleCommand) (*domain.Sample, error) {
	sample, err := s.repo.GetSample(ctx, cmd.SampleID)
	if err != nil {
		return nil, domain.ErrSampleNotFound
	}
	if !sample.OwnedBy(cmd.ProducerID) {
		return nil, domain.ErrNotOwner
	}
	if cmd.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	sample.Title = cmd.Title
	sample.Price = cmd.Price
	sample.BPM = cmd.BPM
	sample.MusicalKey = cmd.MusicalKey
	if err := s.repo.SaveSample(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// DeleteSample 删除样本，校验所有权；已被购买的样本只做软删除保护
func (s *CatalogCommandService) DeleteSample(ctx context.Context, sampleID, producerID uint) error {
	sample, err := s.repo.GetSample(ctx, sampleID)
	if err != nil {
		return domain.ErrSampleNotFound
	}
	if !sample.OwnedBy(producerID) {
		return domain.ErrNotOwner
	}

	purchased, err := s.repo.SampleHasEntitlements(ctx, sampleID)
	if err != nil {
		return err
	}
	if purchased {
		return domain.ErrSamplePurchased
	}

	return s.repo.DeleteSample(ctx, sampleID)
}

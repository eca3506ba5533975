package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/samplemarket/internal/cart/domain"
	"github.com/wyfcoding/samplemarket/pkg/metrics"
)

type CartApplicationService struct {
	repo    domain.CartRepository
	metrics *metrics.Metrics
}

func NewCartApplicationService(repo domain.CartRepository, m *metrics.Metrics) *CartApplicationService {
	return &CartApplicationService{repo: repo, metrics: m}
}

// CartView 购物车读取结果，总价在读取时实时计算
type CartView struct {
	Lines []domain.Line   `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s *CartApplicationService) GetCart(ctx context.Context, owner domain.Owner) (*CartView, error) {
	lines, err := s.repo.ListLines(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: domain.Total(lines)}, nil
}

// AddItem 加购；重复加购累加数量，返回当前行数
func (s *CartApplicationService) AddItem(ctx context.Context, owner domain.Owner, sampleID uint, qty int) (int64, error) {
	if qty < 1 {
		return 0, domain.ErrInvalidQuantity
	}

	exists, err := s.repo.SampleExists(ctx, sampleID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrSampleNotFound
	}

	if err := s.repo.Upsert(ctx, owner, sampleID, qty); err != nil {
		return 0, err
	}
	s.metrics.CartOpsTotal.WithLabelValues("add", string(owner.Kind)).Inc()
	return s.repo.CountLines(ctx, owner)
}

// UpdateQuantity 更新数量；跨身份访问一律按 NotFound 拒绝
func (s *CartApplicationService) UpdateQuantity(ctx context.Context, owner domain.Owner, lineID uint, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}

	line, err := s.repo.GetLine(ctx, lineID)
	if err != nil {
		return domain.ErrLineNotFound
	}
	if line.OwnerKind != owner.Kind || line.OwnerRef != owner.Ref {
		return domain.ErrLineNotFound
	}

	if err := s.repo.UpdateQuantity(ctx, lineID, qty); err != nil {
		return err
	}
	s.metrics.CartOpsTotal.WithLabelValues("update", string(owner.Kind)).Inc()
	return nil
}

func (s *CartApplicationService) RemoveItem(ctx context.Context, owner domain.Owner, lineID uint) error {
	line, err := s.repo.GetLine(ctx, lineID)
	if err != nil {
		return domain.ErrLineNotFound
	}
	if line.OwnerKind != owner.Kind || line.OwnerRef != owner.Ref {
		return domain.ErrLineNotFound
	}

	if err := s.repo.DeleteLine(ctx, lineID); err != nil {
		return err
	}
	s.metrics.CartOpsTotal.WithLabelValues("remove", string(owner.Kind)).Inc()
	return nil
}

func (s *CartApplicationService) ClearCart(ctx context.Context, owner domain.Owner) error {
	if err := s.repo.Clear(ctx, owner); err != nil {
		return err
	}
	s.metrics.CartOpsTotal.WithLabelValues("clear", string(owner.Kind)).Inc()
	return nil
}

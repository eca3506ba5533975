package application

import (
	"context"
	"time"

	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/metrics"
)

// EntitlementApplicationService 下载授权应用服务：签发与兑换
type EntitlementApplicationService struct {
	repo     domain.EntitlementRepository
	signer   domain.StorageSigner
	resolver domain.SampleResolver
	urlTTL   time.Duration
	metrics  *metrics.Metrics
}

func NewEntitlementApplicationService(
	repo domain.EntitlementRepository,
	signer domain.StorageSigner,
	resolver domain.SampleResolver,
	urlTTL time.Duration,
	m *metrics.Metrics,
) *EntitlementApplicationService {
	return &EntitlementApplicationService{repo: repo, signer: signer, resolver: resolver, urlTTL: urlTTL, metrics: m}
}

// Issue 为已购样本签发下载授权并持久化，返回 token。
// 对同一 (order, sample) 重复调用会签发新的授权，不做幂等合并。
func (s *EntitlementApplicationService) Issue(ctx context.Context, orderID, sampleID uint, email string, ttl time.Duration, limit int) (string, error) {
	e := domain.NewEntitlement(orderID, sampleID, email, ttl, limit)
	if err := s.repo.Save(ctx, e); err != nil {
		return "", err
	}
	return e.Token, nil
}

// RedeemResult 兑换结果；Degraded 表示签名网关不可用，计数已扣减
type RedeemResult struct {
	URL       string    `json:"url,omitempty"`
	Degraded  bool      `json:"degraded,omitempty"`
	SampleID  uint      `json:"sample_id"`
	Remaining int       `json:"remaining"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Redeem 兑换下载 token：
// 过期优先于次数校验；计数自增为单条条件更新，并发兑换不会超出预算。
func (s *EntitlementApplicationService) Redeem(ctx context.Context, token string) (*RedeemResult, error) {
	e, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		s.metrics.RedemptionsTotal.WithLabelValues("not_found").Inc()
		return nil, domain.ErrTokenNotFound
	}

	now := time.Now()
	switch e.StateAt(now) {
	case domain.StateExpired:
		s.metrics.RedemptionsTotal.WithLabelValues("expired").Inc()
		return nil, domain.ErrExpired
	case domain.StateExhausted:
		s.metrics.RedemptionsTotal.WithLabelValues("limit_exceeded").Inc()
		return nil, domain.ErrLimitExceeded
	}

	affected, err := s.repo.RedeemIncrement(ctx, token)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 与并发兑换竞争失败；预算在校验与更新之间被耗尽
		s.metrics.RedemptionsTotal.WithLabelValues("limit_exceeded").Inc()
		return nil, domain.ErrLimitExceeded
	}
	e.DownloadCount++

	result := &RedeemResult{
		SampleID:  e.SampleID,
		Remaining: e.Remaining(),
		ExpiresAt: e.ExpiresAt,
	}

	objectKey, err := s.resolver.ObjectKey(ctx, e.SampleID)
	if err != nil {
		logger.Warn(ctx, "Failed to resolve sample object key, returning degraded response",
			"sample_id", e.SampleID, "error", err)
		result.Degraded = true
		s.metrics.RedemptionsTotal.WithLabelValues("degraded").Inc()
		return result, nil
	}

	url, err := s.signer.SignURL(ctx, objectKey, s.urlTTL)
	if err != nil {
		// 计数已扣减；签名失败降级为信息响应而非硬失败
		logger.Warn(ctx, "Signed URL generation failed, returning degraded response",
			"sample_id", e.SampleID, "error", err)
		result.Degraded = true
		s.metrics.RedemptionsTotal.WithLabelValues("degraded").Inc()
		return result, nil
	}

	result.URL = url
	s.metrics.RedemptionsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// ListByEmail 列出某邮箱名下的授权（我的下载）
func (s *EntitlementApplicationService) ListByEmail(ctx context.Context, email string) ([]*domain.Entitlement, error) {
	return s.repo.ListByEmail(ctx, email)
}

// Package storage 对接对象存储签名网关的 HTTP 客户端
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
)

// GatewayClient 通过签名网关换取限时下载 URL，外部调用带超时与熔断
type GatewayClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[string]
}

type signResponse struct {
	URL string `json:"url"`
}

func NewGatewayClient(baseURL, apiKey string, timeout time.Duration) domain.StorageSigner {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey)

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "storage-signer",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &GatewayClient{client: client, breaker: breaker}
}

func (g *GatewayClient) SignURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		var out signResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(map[string]any{
				"object_key": objectKey,
				"ttl":        int(ttl.Seconds()),
			}).
			SetResult(&out).
			Post("/v1/sign")
		if err != nil {
			return "", fmt.Errorf("storage gateway request failed: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("storage gateway returned status %d", resp.StatusCode())
		}
		if out.URL == "" {
			return "", fmt.Errorf("storage gateway returned empty url")
		}
		return out.URL, nil
	})
}

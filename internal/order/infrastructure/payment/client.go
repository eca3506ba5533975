// Package payment 对接外部支付会话服务的 HTTP 客户端
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/wyfcoding/samplemarket/internal/order/domain"
)

// Client 支付会话客户端，外部调用带超时与熔断
type Client struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

func NewClient(baseURL, apiKey string, timeout time.Duration) domain.PaymentProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey)

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:    "payment-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{client: client, breaker: breaker}
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

func (c *Client) CreateSession(ctx context.Context, orderNo string, amount decimal.Decimal, email string) (*domain.PaymentSession, error) {
	var out createSessionResponse

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetBody(map[string]any{
				"reference":      orderNo,
				"amount":         amount.StringFixed(2),
				"currency":       "usd",
				"customer_email": email,
			}).
			SetResult(&out).
			Post("/v1/checkout/sessions")
	})
	if err != nil {
		return nil, fmt.Errorf("payment session creation failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode())
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("payment provider returned empty session id")
	}

	return &domain.PaymentSession{SessionID: out.SessionID, CheckoutURL: out.CheckoutURL}, nil
}

type sessionStatusResponse struct {
	PaymentStatus string `json:"payment_status"`
}

func (c *Client) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	var out sessionStatusResponse

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/v1/checkout/sessions/" + sessionID)
	})
	if err != nil {
		return false, fmt.Errorf("payment status query failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("payment provider returned status %d", resp.StatusCode())
	}

	return out.PaymentStatus == "paid", nil
}

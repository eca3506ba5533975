// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 订单计数
	OrdersTotal *prometheus.CounterVec
	// 下载兑换计数
	RedemptionsTotal *prometheus.CounterVec
	// 购物车操作计数
	CartOpsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Total orders created",
		}, []string{"flow", "status"}),
		RedemptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: serviceName,
			Name:      "redemptions_total",
			Help:      "Total download token redemptions",
		}, []string{"outcome"}),
		CartOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: serviceName,
			Name:      "cart_operations_total",
			Help:      "Total cart operations",
		}, []string{"op", "owner_kind"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersTotal,
		m.RedemptionsTotal,
		m.CartOpsTotal,
	)

	return m
}

// Handler 返回 Prometheus 指标的 HTTP handler
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware 记录 HTTP 请求指标的中间件
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

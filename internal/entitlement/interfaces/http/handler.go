package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/samplemarket/internal/entitlement/application"
	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

// DownloadHandler 下载兑换 HTTP 处理器
type DownloadHandler struct {
	svc *application.EntitlementApplicationService
}

func NewDownloadHandler(svc *application.EntitlementApplicationService) *DownloadHandler {
	return &DownloadHandler{svc: svc}
}

func (h *DownloadHandler) RegisterRoutes(r *gin.Engine, api *gin.RouterGroup, auth gin.HandlerFunc) {
	// 下载入口挂在根路径，token 即凭证，无需登录
	r.GET("/download/:token", h.Redeem)

	api.GET("/v1/my-downloads", auth, h.MyDownloads)
}

// Redeem 兑换下载 token：成功跳转签名 URL，签名失败时返回降级 JSON
func (h *DownloadHandler) Redeem(c *gin.Context) {
	token := c.Param("token")

	result, err := h.svc.Redeem(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		case errors.Is(err, domain.ErrExpired):
			response.ErrorWithStatus(c, http.StatusGone, err.Error(), "")
		case errors.Is(err, domain.ErrLimitExceeded):
			response.ErrorWithStatus(c, http.StatusTooManyRequests, err.Error(), "")
		default:
			logger.Error(c.Request.Context(), "Redemption failed", "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, "redemption failed", "")
		}
		return
	}

	if result.Degraded {
		response.Success(c, gin.H{
			"message":    "download recorded, retry shortly for the file",
			"sample_id":  result.SampleID,
			"remaining":  result.Remaining,
			"expires_at": result.ExpiresAt,
		})
		return
	}

	c.Redirect(http.StatusFound, result.URL)
}

func (h *DownloadHandler) MyDownloads(c *gin.Context) {
	email := c.GetString(middleware.UserEmailKey)

	list, err := h.svc.ListByEmail(c.Request.Context(), email)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list downloads", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to list downloads", "")
		return
	}

	response.Success(c, gin.H{"downloads": list})
}

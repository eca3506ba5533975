package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/samplemarket/internal/catalog/application"
	"github.com/wyfcoding/samplemarket/internal/catalog/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

// CatalogHandler HTTP 处理器
// 负责样本包浏览与制作人样本管理
type CatalogHandler struct {
	cmd   *application.CatalogCommandService
	query *application.CatalogQueryService
}

func NewCatalogHandler(cmd *application.CatalogCommandService, query *application.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由；producer 为鉴权+角色校验中间件链
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, producer ...gin.HandlerFunc) {
	packs := r.Group("/v1/packs")
	{
		packs.GET("", h.ListPacks)
		packs.GET("/:id", h.GetPack)
	}

	samples := r.Group("/v1/samples")
	{
		samples.GET("", h.ListSamples)
	}

	mutations := r.Group("/v1")
	mutations.Use(producer...)
	{
		mutations.POST("/packs", h.CreatePack)
		mutations.POST("/samples", h.CreateSample)
		mutations.PUT("/samples/:id", h.UpdateSample)
		mutations.DELETE("/samples/:id", h.DeleteSample)
	}
}

func (h *CatalogHandler) ListPacks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	genre := c.Query("genre")

	packs, total, err := h.query.ListPacks(c.Request.Context(), genre, page, size)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list packs", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to list packs", "")
		return
	}

	response.Success(c, gin.H{"packs": packs, "total": total, "page": page, "size": size})
}

func (h *CatalogHandler) GetPack(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid pack id", "")
		return
	}

	pack, err := h.query.GetPack(c.Request.Context(), uint(id))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "pack not found", "")
		return
	}

	response.Success(c, pack)
}

func (h *CatalogHandler) ListSamples(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var packID *uint
	if raw := c.Query("pack_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid pack_id", "")
			return
		}
		id := uint(parsed)
		packID = &id
	}

	samples, total, err := h.query.ListSamples(c.Request.Context(), packID, page, size)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list samples", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to list samples", "")
		return
	}

	response.Success(c, gin.H{"samples": samples, "total": total, "page": page, "size": size})
}

type createPackRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Price       string `json:"price" binding:"required"`
	CoverKey    string `json:"cover_key"`
}

func (h *CatalogHandler) CreatePack(c *gin.Context) {
	var req createPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}

	pack, err := h.cmd.CreatePack(c.Request.Context(), application.CreatePackCommand{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Price:       price,
		CoverKey:    req.CoverKey,
		ProducerID:  c.GetUint(middleware.UserIDKey),
	})
	if err != nil {
		h.mapCommandError(c, err)
		return
	}

	response.Created(c, pack)
}

type sampleRequest struct {
	Title      string `json:"title" binding:"required"`
	Price      string `json:"price" binding:"required"`
	BPM        int    `json:"bpm"`
	MusicalKey string `json:"musical_key"`
	ObjectKey  string `json:"object_key"`
	PackID     *uint  `json:"pack_id"`
}

func (h *CatalogHandler) CreateSample(c *gin.Context) {
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.ObjectKey == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "object_key is required", "")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}

	sample, err := h.cmd.CreateSample(c.Request.Context(), application.CreateSampleCommand{
		Title:      req.Title,
		Price:      price,
		BPM:        req.BPM,
		MusicalKey: req.MusicalKey,
		ObjectKey:  req.ObjectKey,
		PackID:     req.PackID,
		ProducerID: c.GetUint(middleware.UserIDKey),
	})
	if err != nil {
		h.mapCommandError(c, err)
		return
	}

	response.Created(c, sample)
}

func (h *CatalogHandler) UpdateSample(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid sample id", "")
		return
	}

	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}

	sample, err := h.cmd.UpdateSample(c.Request.Context(), application.UpdateSampleCommand{
		SampleID:   uint(id),
		ProducerID: c.GetUint(middleware.UserIDKey),
		Title:      req.Title,
		Price:      price,
		BPM:        req.BPM,
		MusicalKey: req.MusicalKey,
	})
	if err != nil {
		h.mapCommandError(c, err)
		return
	}

	response.Success(c, sample)
}

func (h *CatalogHandler) DeleteSample(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid sample id", "")
		return
	}

	if err := h.cmd.DeleteSample(c.Request.Context(), uint(id), c.GetUint(middleware.UserIDKey)); err != nil {
		h.mapCommandError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func (h *CatalogHandler) mapCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSampleNotFound), errors.Is(err, domain.ErrPackNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrNotOwner):
		response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrSamplePurchased):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "Catalog command failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "")
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/samplemarket/internal/auth/application"
	"github.com/wyfcoding/samplemarket/internal/auth/domain"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
	"github.com/wyfcoding/samplemarket/pkg/response"
)

type Handler struct {
	svc *application.AuthApplicationService
}

func NewHandler(svc *application.AuthApplicationService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	g := r.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", auth, h.Me)
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	user, err := h.svc.Register(c.Request.Context(), application.RegisterCommand{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to register user", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "registration failed", "")
		return
	}

	response.Created(c, gin.H{"user_id": user.ID, "email": user.Email, "role": user.Role})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	token, exp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.ErrorWithStatus(c, http.StatusUnauthorized, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to login", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "login failed", "")
		return
	}

	response.Success(c, gin.H{"token": token, "type": "Bearer", "expires_at": exp})
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetUint(middleware.UserIDKey)

	user, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "user not found", "")
		return
	}

	response.Success(c, user)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopdesk/internal/domain/auth"
	"shopdesk/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.RegisterAdmin(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenResult(result))
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}

// CreateWorker handles POST /workers
func (h *AuthHandler) CreateWorker(c *gin.Context) {
	ctx := c.Request.Context()

	adminID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.CreateWorkerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	worker, err := h.service.CreateWorker(ctx, adminID, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(worker))
}

// ListWorkers handles GET /workers
func (h *AuthHandler) ListWorkers(c *gin.Context) {
	ctx := c.Request.Context()

	adminID, ok := h.ShopID(c)
	if !ok {
		return
	}

	workers, err := h.service.ListWorkers(ctx, adminID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, len(workers))
	for i := range workers {
		items[i] = dto.FromUser(&workers[i])
	}
	h.OK(c, dto.NewListResponse(items, len(items)))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/domain/auth"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/infrastructure/http/v1/dto"
)

// BillingHandler handles plan management and subscription endpoints.
// Plan CRUD and plan assignment belong to the super-admin console; the
// subscription view and worker permissions are shop-level.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
	users   *auth.Service
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service, users *auth.Service) *BillingHandler {
	return &BillingHandler{
		BaseHandler: base,
		service:     service,
		users:       users,
	}
}

// --- Super-admin console: plans ---

// CreatePlan handles POST /console/plans
func (h *BillingHandler) CreatePlan(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan := billing.NewPlan(req.Name, req.Code)
	if err := req.ToPlan(plan); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.CreatePlan(ctx, plan); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, plan.ID)
}

// UpdatePlan handles PUT /console/plans/:id
func (h *BillingHandler) UpdatePlan(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.PlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan, err := h.service.GetPlan(ctx, planID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ToPlan(plan); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}
	plan.Version = req.Version

	if err := h.service.UpdatePlan(ctx, plan); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, plan)
}

// GetPlan handles GET /console/plans/:id
func (h *BillingHandler) GetPlan(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.service.GetPlan(ctx, planID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, plan)
}

// ListPlans handles GET /console/plans
func (h *BillingHandler) ListPlans(c *gin.Context) {
	ctx := c.Request.Context()

	includeDeleted := c.Query("includeDeleted") == "true"
	plans, err := h.service.ListPlans(ctx, includeDeleted)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(plans, len(plans)))
}

// DeletePlan handles DELETE /console/plans/:id
func (h *BillingHandler) DeletePlan(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePlan(ctx, planID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// --- Super-admin console: admins and assignment ---

// ListAdmins handles GET /console/admins
func (h *BillingHandler) ListAdmins(c *gin.Context) {
	ctx := c.Request.Context()

	admins, err := h.users.ListAdmins(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, len(admins))
	for i := range admins {
		items[i] = dto.FromUser(&admins[i])
	}
	h.OK(c, dto.NewListResponse(items, len(items)))
}

// AssignPlan handles POST /console/admins/:id/plan
func (h *BillingHandler) AssignPlan(c *gin.Context) {
	ctx := c.Request.Context()

	adminID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	planID, err := id.Parse(req.PlanID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid planId").WithDetail("planId", req.PlanID))
		return
	}

	sub, err := h.service.AssignPlan(ctx, adminID, planID, req.ToAssignOptions())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// CancelSubscription handles POST /console/admins/:id/cancel
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	ctx := c.Request.Context()

	adminID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.CancelSubscription(ctx, adminID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "subscription cancelled")
}

// ListSubscriptions handles GET /console/subscriptions
func (h *BillingHandler) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()

	status := billing.SubscriptionStatus(c.Query("status"))
	subs, err := h.service.ListSubscriptions(ctx, status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(subs, len(subs)))
}

// --- Shop-level: own subscription ---

// MySubscription handles GET /subscription
func (h *BillingHandler) MySubscription(c *gin.Context) {
	ctx := c.Request.Context()

	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	sub, err := h.service.CurrentSubscription(ctx, shopID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if sub == nil {
		h.Error(c, apperror.NewNotFound("subscription", shopID.String()))
		return
	}
	h.OK(c, sub)
}

// --- Shop-level: worker permissions ---

// SetWorkerPermission handles PUT /workers/:id/permissions
func (h *BillingHandler) SetWorkerPermission(c *gin.Context) {
	ctx := c.Request.Context()

	workerID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.WorkerPermissionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	feature, err := security.ParseFeature(req.Feature)
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.SetWorkerPermission(ctx, workerID, feature, req.PermissionSet()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "permission set")
}

// RevokeWorkerPermission handles DELETE /workers/:id/permissions/:feature
func (h *BillingHandler) RevokeWorkerPermission(c *gin.Context) {
	ctx := c.Request.Context()

	workerID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	feature, err := security.ParseFeature(c.Param("feature"))
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.RevokeWorkerPermission(ctx, workerID, feature); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

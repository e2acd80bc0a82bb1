package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopdesk/internal/domain/sales"
	"shopdesk/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles sale and credit endpoints.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Checkout handles POST /sales
func (h *SalesHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToCheckoutRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Checkout(ctx, ownerID, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSale handles GET /sales/:id
func (h *SalesHandler) GetSale(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetSale(ctx, ownerID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// ListSales handles GET /sales
func (h *SalesHandler) ListSales(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	filter := sales.ListFilter{
		PaymentStatus:  sales.PaymentStatus(c.Query("paymentStatus")),
		CustomerSearch: c.Query("customer"),
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	result, err := h.service.ListSales(ctx, ownerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, len(result)))
}

// RecordPayment handles POST /sales/:id/payments
func (h *SalesHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := req.ToMoney()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordPayment(ctx, ownerID, saleID, amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// ReturnLine handles POST /sales/:id/items/:itemId/return
func (h *SalesHandler) ReturnLine(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	sale, err := h.service.ReturnLine(ctx, ownerID, saleID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// DeleteSale handles DELETE /sales/:id
func (h *SalesHandler) DeleteSale(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSale(ctx, ownerID, saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// --- Credits ---

// OpenCredit handles POST /credits
func (h *SalesHandler) OpenCredit(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.OpenCreditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := dto.PaymentRequest{Amount: req.Amount}.ToMoney()
	if err != nil {
		h.Error(c, err)
		return
	}

	credit, err := h.service.OpenCashCredit(ctx, ownerID, req.CustomerName, amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, credit)
}

// ReceiveCreditPayment handles POST /credits/:id/payments
func (h *SalesHandler) ReceiveCreditPayment(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	creditID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := req.ToMoney()
	if err != nil {
		h.Error(c, err)
		return
	}

	credit, err := h.service.ReceiveCreditPayment(ctx, ownerID, creditID, amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, credit)
}

// ListCredits handles GET /credits
func (h *SalesHandler) ListCredits(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	creditType := sales.CreditType(c.Query("type"))
	credits, err := h.service.ListCredits(ctx, ownerID, creditType)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(credits, len(credits)))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := product.New(ownerID, req.Name)
	if err := req.Apply(p); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, ownerID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, ownerID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.Apply(p); err != nil {
		h.Error(c, err)
		return
	}
	p.Version = req.Version

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, ownerID, productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock handles POST /products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AdjustStock(ctx, ownerID, productID, req.Delta); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "stock adjusted")
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := h.ShopID(c)
	if !ok {
		return
	}

	filter := product.ListFilter{
		Search:         c.Query("search"),
		Category:       c.Query("category"),
		IncludeDeleted: c.Query("includeDeleted") == "true",
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}

	products, err := h.service.List(ctx, ownerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products, len(products)))
}

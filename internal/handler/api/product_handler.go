package api

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/erp"
	"storeapi/internal/models"
	"storeapi/internal/pkg/utils"
)

// ProductHandler handles catalog management actions, including the ERP
// stock refresh.
type ProductHandler struct {
	repos  *Repos
	erp    *erp.Client
	logger *zap.Logger
}

func NewProductHandler(repos *Repos, erpClient *erp.Client, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{repos: repos, erp: erpClient, logger: logger}
}

// Handle routes product API requests.
// POST /api/products
func (h *ProductHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "products":
		return h.listProducts(c, body)
	case "product":
		return h.getProduct(c, body)
	case "product_add":
		return h.addProduct(c, body)
	case "product_edit":
		return h.editProduct(c, body)
	case "product_delete":
		return h.deleteProduct(c, body)
	case "product_refresh_stock":
		return h.refreshStock(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *ProductHandler) listProducts(c echo.Context, body map[string]interface{}) error {
	limit := getIntField(body, "limit", 50)
	page := getIntField(body, "page", 1)
	q := getStringField(body, "q")

	products, total, err := h.repos.Product.FindAll(limit, page, q)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		return errorResponse(c, "Failed to retrieve products")
	}
	return successResponse(c, "Successful", paginatedResponse(products, total, page, limit))
}

func (h *ProductHandler) getProduct(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}

	product, err := h.repos.Product.FindByID(uint(id))
	if err != nil {
		return errorResponse(c, "Product not found")
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"product": product,
		"sizes":   product.SizeList(),
		"colors":  product.ColorList(),
	})
}

func (h *ProductHandler) addProduct(c echo.Context, body map[string]interface{}) error {
	name := getStringField(body, "name")
	if name == "" {
		return errorResponse(c, "name is required")
	}

	ref := getStringField(body, "ref")
	if ref == "" {
		ref = utils.RandomHex(8)
	}

	product := &models.Product{
		Ref:      ref,
		Name:     name,
		SKU:      getStringField(body, "sku"),
		Price:    getFloatField(body, "price", 0),
		Stock:    getIntField(body, "stock", 0),
		Sizes:    encodeListField(body, "sizes"),
		Colors:   encodeListField(body, "colors"),
		ImageURL: getStringField(body, "image_url"),
		Category: getStringField(body, "category"),
		Active:   getBoolField(body, "active", true),
	}
	if err := h.repos.Product.Create(product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		return errorResponse(c, "Failed to create product")
	}
	return successResponse(c, "Product created", product)
}

func (h *ProductHandler) editProduct(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}

	updates := map[string]interface{}{}
	if v := getStringField(body, "name"); v != "" {
		updates["name"] = v
	}
	if v := getStringField(body, "sku"); v != "" {
		updates["sku"] = v
	}
	if _, ok := body["price"]; ok {
		updates["price"] = getFloatField(body, "price", 0)
	}
	if _, ok := body["stock"]; ok {
		updates["stock"] = getIntField(body, "stock", 0)
	}
	if _, ok := body["sizes"]; ok {
		updates["sizes"] = encodeListField(body, "sizes")
	}
	if _, ok := body["colors"]; ok {
		updates["colors"] = encodeListField(body, "colors")
	}
	if v := getStringField(body, "image_url"); v != "" {
		updates["image_url"] = v
	}
	if v := getStringField(body, "category"); v != "" {
		updates["category"] = v
	}
	if _, ok := body["active"]; ok {
		updates["active"] = getBoolField(body, "active", true)
	}
	if len(updates) == 0 {
		return errorResponse(c, "Nothing to update")
	}

	if err := h.repos.Product.Update(uint(id), updates); err != nil {
		h.logger.Error("Failed to update product", zap.Error(err))
		return errorResponse(c, "Failed to update product")
	}
	return successResponse(c, "Product updated", nil)
}

func (h *ProductHandler) deleteProduct(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}
	if err := h.repos.Product.Delete(uint(id)); err != nil {
		h.logger.Error("Failed to delete product", zap.Error(err))
		return errorResponse(c, "Failed to delete product")
	}
	return successResponse(c, "Product deleted", nil)
}

// refreshStock pulls the current stock figure from the ERP and writes it
// back to the catalog row.
func (h *ProductHandler) refreshStock(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}
	if h.erp == nil || !h.erp.Enabled() {
		return errorResponse(c, "ERP integration is not configured")
	}

	product, err := h.repos.Product.FindByID(uint(id))
	if err != nil {
		return errorResponse(c, "Product not found")
	}
	if product.SKU == "" {
		return errorResponse(c, "Product has no SKU to look up")
	}

	ctx := c.Request().Context()
	stock, err := h.erp.ProductStock(ctx, product.SKU)
	if err != nil {
		h.logger.Error("ERP stock lookup failed",
			zap.String("sku", product.SKU), zap.Error(err))
		return errorResponse(c, "ERP stock lookup failed")
	}
	if err := h.repos.Product.SetStock(ctx, product.Ref, stock); err != nil {
		h.logger.Error("Failed to store refreshed stock", zap.Error(err))
		return errorResponse(c, "Failed to store refreshed stock")
	}
	return successResponse(c, "Stock refreshed", map[string]interface{}{
		"ref":   product.Ref,
		"sku":   product.SKU,
		"stock": stock,
	})
}

func encodeListField(body map[string]interface{}, key string) string {
	v, ok := body[key]
	if !ok || v == nil {
		return ""
	}
	b, _ := json.Marshal(v)
	return string(b)
}

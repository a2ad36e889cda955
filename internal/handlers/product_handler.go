package handlers

import (
	"warehouse/internal/middleware"
	"warehouse/internal/models"
	"warehouse/internal/response"
	"warehouse/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	inventory services.Inventory
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(inventory services.Inventory) *ProductHandler {
	return &ProductHandler{inventory: inventory}
}

// RegisterRoutes registers the product routes, all guarded by authRequired.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products", authRequired)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/add", h.HandleAddProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/buy/:id", h.HandleBuyProduct)
}

// HandleGetProduct returns a product that is in stock.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.inventory.Fetch(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(product)
}

// HandleAddProduct lists a new product for the calling seller.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.inventory.Create(c.UserContext(), middleware.CurrentUser(c), in)
	if err != nil {
		return response.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductUpdate
	if err := c.BodyParser(&patch); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.inventory.Update(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), patch)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and answers 202 with no body.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.inventory.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// HandleBuyProduct buys units of a product and answers with the receipt.
func (h *ProductHandler) HandleBuyProduct(c *fiber.Ctx) error {
	var req models.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	receipt, err := h.inventory.Decrease(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(receipt)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/cart"
	"github.com/jhoicas/tienda-empleados-api/internal/application/dto"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// CartHandler carrito del empleado autenticado.
type CartHandler struct {
	uc  *cart.UseCase
	log *logger.Logger
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *cart.UseCase, log *logger.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  cart.View
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) List(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.List(c.UserContext(), accountID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

// Add godoc
// @Summary      Agregar producto al carrito
// @Description  Suma la cantidad a la línea existente o la crea.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "Producto y cantidad"
// @Success      200   {object}  cart.View
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	view, err := h.uc.Add(c.UserContext(), accountID, in.ProductID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

// Update godoc
// @Summary      Cambiar cantidad
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                     true  "ID del producto"
// @Param        body       body  dto.UpdateCartItemRequest  true  "Nueva cantidad"
// @Success      200        {object}  cart.View
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/cart/{productId} [patch]
func (h *CartHandler) Update(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	view, err := h.uc.Update(c.UserContext(), accountID, c.Params("productId"), in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

// Remove godoc
// @Summary      Quitar producto
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {object}  cart.View
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/cart/{productId} [delete]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.Remove(c.UserContext(), accountID, c.Params("productId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  cart.View
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.Clear(c.UserContext(), accountID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/dto"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// OrderHandler consultas y acciones del empleado sobre sus pedidos.
type OrderHandler struct {
	queries     *orders.QueryUseCase
	fulfillment *fulfillment.UseCase
	log         *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(queries *orders.QueryUseCase, fulfillment *fulfillment.UseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{queries: queries, fulfillment: fulfillment, log: log}
}

// Spend godoc
// @Summary      Gasto de la semana vigente
// @Tags         me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  orders.WeeklySummary
// @Router       /api/me/spend [get]
func (h *OrderHandler) Spend(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	sum, err := h.queries.WeeklySummary(c.UserContext(), accountID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sum)
}

// History godoc
// @Summary      Historial de pedidos
// @Tags         me
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/me/orders [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	list, err := h.queries.AccountHistory(c.UserContext(), accountID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrdersFromDetails(list))
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  El empleado cancela los suyos; despacho y admin cualquiera. Un pedido entregado no se cancela.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelOrderRequest  true  "transaction_id"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	var in dto.CancelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.fulfillment.CancelOrder(c.UserContext(), fulfillment.CancelInput{
		TransactionID: in.TransactionID,
		Actor:         fulfillment.Actor{AccountID: accountID, Role: GetRole(c)},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

// Receipt godoc
// @Summary      Descargar comprobante
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        transactionId  path  string  true  "Transaction id (INV-...)"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{transactionId}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	pdf, name, err := h.queries.Receipt(c.UserContext(), c.Params("transactionId"), accountID, GetRole(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(pdf)
}

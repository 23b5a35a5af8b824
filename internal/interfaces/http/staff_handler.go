package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/application/dto"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// StaffHandler operaciones de despacho y administración.
type StaffHandler struct {
	queries     *orders.QueryUseCase
	fulfillment *fulfillment.UseCase
	loc         *time.Location
	log         *logger.Logger
}

// NewStaffHandler construye el handler. loc interpreta las fechas sin zona de los filtros.
func NewStaffHandler(queries *orders.QueryUseCase, fulfillment *fulfillment.UseCase, loc *time.Location, log *logger.Logger) *StaffHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StaffHandler{queries: queries, fulfillment: fulfillment, loc: loc, log: log}
}

// ListOrders godoc
// @Summary      Buscar pedidos
// @Tags         staff
// @Security     Bearer
// @Produce      json
// @Param        invoice_number  query  string  false  "Número de factura (FAC-...)"
// @Param        account_id      query  string  false  "Cuenta"
// @Param        employee_code   query  string  false  "Código de empleado"
// @Param        transaction_id  query  string  false  "Transaction id"
// @Param        status          query  string  false  "Estado"
// @Param        from            query  string  false  "Desde (YYYY-MM-DD o RFC3339, inclusivo)"
// @Param        to              query  string  false  "Hasta (YYYY-MM-DD o RFC3339, exclusivo)"
// @Param        min_amount      query  string  false  "Monto mínimo"
// @Param        max_amount      query  string  false  "Monto máximo"
// @Param        limit           query  int     false  "Límite (default 50, máx 500)"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/staff/orders [get]
func (h *StaffHandler) ListOrders(c *fiber.Ctx) error {
	f, err := h.orderFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, fmt.Errorf("paginación: %w", domain.ErrInvalidInput))
	}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	list, err := h.queries.ListOrders(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderListResponse{
		Items: dto.OrdersFromDetails(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ChangeStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  Solo las transiciones del flujo: REQUESTED→PROCESSING→READY_FOR_PICKUP→DELIVERED, y cancelación desde REQUESTED o PROCESSING.
// @Tags         staff
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.ChangeStatusRequest  true  "Estado destino"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/staff/orders/{id}/status [put]
func (h *StaffHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.fulfillment.ChangeStatus(c.UserContext(), fulfillment.ChangeStatusInput{
		OrderID: c.Params("id"),
		Target:  parseStatus(in.Status),
		Actor:   fulfillment.Actor{AccountID: GetAccountID(c), Role: GetRole(c)},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OrderFromEntity(o))
}

// ListDispatch godoc
// @Summary      Proyección de despacho
// @Tags         staff
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.DispatchListResponse
// @Router       /api/staff/dispatch [get]
func (h *StaffHandler) ListDispatch(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, fmt.Errorf("paginación: %w", domain.ErrInvalidInput))
	}
	page.DefaultPage()
	var status entity.OrderStatus
	if raw := c.Query("status"); raw != "" {
		status = parseStatus(raw)
	}
	list, err := h.queries.ListDispatch(c.UserContext(), status, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DispatchListResponse{
		Items: dto.DispatchFromEntities(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Resync godoc
// @Summary      Reconstruir proyección de despacho
// @Tags         staff
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  fulfillment.ResyncReport
// @Router       /api/staff/dispatch/resync [post]
func (h *StaffHandler) Resync(c *fiber.Ctx) error {
	report, err := h.fulfillment.ResyncDispatch(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report)
}

// Export godoc
// @Summary      Exportar pedidos a la lista de alisto
// @Description  Exporta todos los pedidos REQUESTED (una fila por línea) y los pasa a PROCESSING.
// @Tags         staff
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExportResponse
// @Router       /api/staff/dispatch/export [post]
func (h *StaffHandler) Export(c *fiber.Ctx) error {
	rows, err := h.fulfillment.ExportRequested(c.UserContext(), fulfillment.Actor{AccountID: GetAccountID(c), Role: GetRole(c)})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ExportResponse{Rows: dto.ExportRowsFromEntities(rows)})
}

func (h *StaffHandler) orderFilter(c *fiber.Ctx) (entity.OrderFilter, error) {
	f := entity.OrderFilter{
		InvoiceNumber: strings.TrimSpace(c.Query("invoice_number")),
		AccountID:     strings.TrimSpace(c.Query("account_id")),
		EmployeeCode:  strings.TrimSpace(c.Query("employee_code")),
		TransactionID: strings.TrimSpace(c.Query("transaction_id")),
	}
	if raw := c.Query("status"); raw != "" {
		f.Status = parseStatus(raw)
	}
	var err error
	if f.From, err = h.parseTime(c.Query("from")); err != nil {
		return f, err
	}
	if f.To, err = h.parseTime(c.Query("to")); err != nil {
		return f, err
	}
	if f.MinAmount, err = parseAmount(c.Query("min_amount")); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount(c.Query("max_amount")); err != nil {
		return f, err
	}
	return f, nil
}

// parseTime acepta RFC3339 o una fecha (medianoche local de la tienda).
func (h *StaffHandler) parseTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		return nil, fmt.Errorf("fecha %q: %w", raw, domain.ErrInvalidInput)
	}
	return &t, nil
}

func parseAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("monto %q: %w", raw, domain.ErrInvalidInput)
	}
	return &d, nil
}

// parseStatus devuelve el estado reconocido o el texto tal cual (el caso de uso lo rechaza).
func parseStatus(raw string) entity.OrderStatus {
	if st, ok := entity.ParseStatus(raw); ok {
		return st
	}
	return entity.OrderStatus(strings.TrimSpace(raw))
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/cart"
	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CartUC         *cart.UseCase
	CheckoutUC     *checkout.UseCase
	FulfillmentUC  *fulfillment.UseCase
	QueryUC        *orders.QueryUseCase
	JWTSecret      string
	RequestTimeout time.Duration
	Location       *time.Location // fechas de los filtros del staff
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequestTimeout(deps.RequestTimeout))

	// Carrito (cualquier rol autenticado)
	cartHandler := NewCartHandler(deps.CartUC, log)
	api.Get("/cart", cartHandler.List)
	api.Post("/cart", cartHandler.Add)
	api.Delete("/cart", cartHandler.Clear)
	api.Patch("/cart/:productId", cartHandler.Update)
	api.Delete("/cart/:productId", cartHandler.Remove)

	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC, log)
	api.Post("/checkout", checkoutHandler.Checkout)

	orderHandler := NewOrderHandler(deps.QueryUC, deps.FulfillmentUC, log)
	api.Get("/me/spend", orderHandler.Spend)
	api.Get("/me/orders", orderHandler.History)
	api.Post("/orders/cancel", orderHandler.Cancel)
	api.Get("/orders/:transactionId/receipt", orderHandler.Receipt)

	// Despacho y administración
	staff := api.Group("/staff", RequireRole(entity.RoleDispatcher, entity.RoleAdmin))
	staffHandler := NewStaffHandler(deps.QueryUC, deps.FulfillmentUC, deps.Location, log)
	staff.Post("/checkout", checkoutHandler.StaffCheckout)
	staff.Get("/orders", staffHandler.ListOrders)
	staff.Put("/orders/:id/status", staffHandler.ChangeStatus)
	staff.Get("/dispatch", staffHandler.ListDispatch)
	staff.Post("/dispatch/resync", RequireRole(entity.RoleAdmin), staffHandler.Resync)
	staff.Post("/dispatch/export", staffHandler.Export)
}

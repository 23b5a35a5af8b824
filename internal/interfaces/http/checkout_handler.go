package http

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/dto"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// HeaderIdempotencyKey lleva la llave de idempotencia del checkout.
const HeaderIdempotencyKey = "X-Idempotency-Key"

// CheckoutHandler checkout propio y checkout de despachador.
type CheckoutHandler struct {
	uc  *checkout.UseCase
	log *logger.Logger
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(uc *checkout.UseCase, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, log: log}
}

// Checkout godoc
// @Summary      Confirmar el carrito
// @Description  Admite el pedido (día bloqueado, pedido pendiente, cuota semanal) y lo persiste.
// @Description  Repetir la misma llave devuelve el pedido original con replayed=true.
// @Tags         checkout
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header  string               false  "Llave de idempotencia"
// @Param        body               body    dto.CheckoutRequest  false  "Llave en el cuerpo"
// @Success      201  {object}  checkout.Result
// @Success      200  {object}  checkout.Result  "reintento con la misma llave"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return unauthorized(c)
	}
	var in dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.uc.AttemptCheckout(c.UserContext(), checkout.Input{
		AccountID:      accountID,
		IdempotencyKey: idempotencyKey(c, in.IdempotencyKey),
		FromCart:       true,
		Device:         DeviceFromUserAgent(c.Get(fiber.HeaderUserAgent)),
		Location:       entity.LocationOnline,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(res)).JSON(res)
}

// StaffCheckout godoc
// @Summary      Pedido del despachador a nombre de un empleado
// @Tags         staff
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header  string                    false  "Llave de idempotencia"
// @Param        body               body    dto.StaffCheckoutRequest  true   "Empleado y líneas"
// @Success      201  {object}  checkout.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/staff/checkout [post]
func (h *CheckoutHandler) StaffCheckout(c *fiber.Ctx) error {
	var in dto.StaffCheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]checkout.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, checkout.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.uc.AttemptCheckout(c.UserContext(), checkout.Input{
		EmployeeCode:   strings.TrimSpace(in.EmployeeCode),
		IdempotencyKey: idempotencyKey(c, in.IdempotencyKey),
		Items:          items,
		Device:         entity.DeviceDispatcher,
		Location:       entity.LocationStore,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().
		Str("transaction_id", res.TransactionID).
		Str("account_id", res.AccountID).
		Str("staff", GetAccountID(c)).
		Bool("replayed", res.Replayed).
		Msg("pedido de despachador")
	return c.Status(resultStatus(res)).JSON(res)
}

func idempotencyKey(c *fiber.Ctx, body string) string {
	if k := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); k != "" {
		return k
	}
	return strings.TrimSpace(body)
}

func resultStatus(res *checkout.Result) int {
	if res.Replayed {
		return fiber.StatusOK
	}
	return fiber.StatusCreated
}

var deviceRules = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`android`), "Android"},
	{regexp.MustCompile(`iphone|ipad|ipod`), "iOS"},
	{regexp.MustCompile(`win`), "Windows"},
	{regexp.MustCompile(`mac`), "MacOS"},
	{regexp.MustCompile(`linux`), "Linux"},
}

// DeviceFromUserAgent resume el User-Agent en la etiqueta que va en el pedido y el comprobante.
func DeviceFromUserAgent(ua string) string {
	ua = strings.ToLower(ua)
	if ua == "" {
		return entity.DeviceUnknown
	}
	for _, r := range deviceRules {
		if r.re.MatchString(ua) {
			return r.name
		}
	}
	return entity.DeviceUnknown
}

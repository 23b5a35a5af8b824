package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/dto"
	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:   fiber.StatusBadRequest,
	domain.KindAdmission:    fiber.StatusBadRequest,
	domain.KindState:        fiber.StatusBadRequest,
	domain.KindNotFound:     fiber.StatusNotFound,
	domain.KindForbidden:    fiber.StatusForbidden,
	domain.KindUnauthorized: fiber.StatusUnauthorized,
	domain.KindTransient:    fiber.StatusServiceUnavailable,
}

// writeError traduce un error de dominio a HTTP. Los internos se registran y se responden sin detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	resp := dto.ErrorResponse{
		Code:      domain.CodeOf(err),
		Message:   err.Error(),
		Retryable: domain.IsRetryable(err),
	}

	var quota *domain.QuotaExceededError
	if errors.As(err, &quota) {
		resp.Spent = &quota.Spent
		resp.Quota = &quota.Quota
	}

	switch kind {
	case domain.KindInternal:
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.Path()).Msg("error interno")
		resp.Message = "error interno"
	case domain.KindTransient:
		log.Warn().Err(err).Str("request_id", requestID(c)).Str("path", c.Path()).Msg("error transitorio")
		resp.Message = domain.ErrTransient.Error()
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

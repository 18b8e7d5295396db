package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON parsea el cuerpo y valida las etiquetas validate del DTO.
// false = la respuesta 400 ya fue escrita.
func bindJSON(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return false
	}
	return checkStruct(c, out)
}

// bindQuery igual que bindJSON pero desde la query string.
func bindQuery(c *fiber.Ctx, out any) bool {
	if err := c.QueryParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
		return false
	}
	return checkStruct(c, out)
}

func checkStruct(c *fiber.Ctx, out any) bool {
	err := validate.Struct(out)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		_ = writeError(c, err)
		return false
	}
	details := make([]dto.FieldErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.FieldErrorDetail{Line: -1, Field: fe.Namespace(), Reason: fe.Tag()})
	}
	_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	return false
}

// writeError traduce errores de dominio a HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		verr  *domain.ValidationError
		stock *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: verr.Error(),
			Details: []dto.FieldErrorDetail{{Line: verr.Line, Field: verr.Field, Reason: verr.Reason}},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		_ = c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.As(err, &stock):
		_ = c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stock.Error(),
			Details: fiber.Map{
				"product_id":   stock.ProductID,
				"warehouse_id": stock.WarehouseID,
				"location_id":  stock.LocationID,
				"available":    stock.Available,
				"requested":    stock.Requested,
			},
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		_ = c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		_ = c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		_ = c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		_ = c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, inventory.ErrSlipUnavailable):
		_ = c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SLIP_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreFailure):
		_ = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "STORE_FAILURE", Message: "fallo del almacenamiento, reintente"})
	default:
		_ = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return nil
}

package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// HeaderIdempotencyKey cabecera con la clave elegida por el cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyStore lo implementa *cache.Idempotency.
type idempotencyStore interface {
	Begin(ctx context.Context, key string) (string, *cache.StoredResponse, error)
	Complete(ctx context.Context, key string, resp cache.StoredResponse) error
	Release(ctx context.Context, key string) error
}

// Idempotency repite la primera respuesta de un POST con la misma Idempotency-Key y usuario.
// Sin cabecera la petición pasa sin cambios. Las respuestas 5xx no se guardan.
func Idempotency(store idempotencyStore, log *logger.Logger) fiber.Handler {
	log = log.Named("idempotency")
	return func(c *fiber.Ctx) error {
		header := c.Get(HeaderIdempotencyKey)
		if header == "" || c.Method() != fiber.MethodPost {
			return c.Next()
		}
		key := GetUserID(c) + ":" + c.Path() + ":" + header
		ctx := c.UserContext()

		state, stored, err := store.Begin(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("almacén de idempotencia no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la Idempotency-Key"})
		}
		switch state {
		case cache.StateComplete:
			c.Set("Idempotent-Replayed", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		case cache.StatePending:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "hay una petición en curso con la misma Idempotency-Key"})
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			_ = store.Release(ctx, key)
			return nil
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("no se guardó la respuesta idempotente")
		}
		return nil
	}
}

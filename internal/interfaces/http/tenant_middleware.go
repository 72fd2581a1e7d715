package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cannaledger/cannaledger-api/internal/application/dto"
	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// HeaderTenantID selector explícito de tenant por petición.
const HeaderTenantID = "X-Tenant-ID"

// TenantMiddleware resuelve el scope de tenant de la petición a partir de los
// claims (cargados por AuthMiddleware) y del header X-Tenant-ID, y lo deja en
// el context.Context de la petición. Debe ir después de AuthMiddleware.
func TenantMiddleware(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := tenantctx.ActorInfo{
			ActorID:       GetUserID(c),
			IsGlobalAdmin: IsGlobalAdmin(c),
		}
		if t := GetTenantID(c); t != "" {
			actor.TenantID = &t
		}

		scope, err := tenantctx.Resolve(actor, c.Get(HeaderTenantID))
		if err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "tenant solicitado no coincide con el del actor"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		if tenantctx.FallbackUnscoped(actor, scope) {
			log.Warn().
				Str("user_id", actor.ActorID).
				Str("path", c.Path()).
				Msg("actor con tenant consulta sin selector; scope sin filtro")
		}

		c.SetUserContext(tenantctx.WithScope(c.UserContext(), scope))
		return c.Next()
	}
}

package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cannaledger/cannaledger-api/internal/application/dto"
	"github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// RetentionHandler maneja la administración de políticas de retención
// (protegido, solo facility managers y admins).
type RetentionHandler struct {
	svc *retention.Service
}

// NewRetentionHandler construye el handler.
func NewRetentionHandler(svc *retention.Service) *RetentionHandler {
	return &RetentionHandler{svc: svc}
}

// Upsert godoc
// @Summary      Crear o reemplazar la política de retención de un tipo de registro
// @Tags         retention
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertRetentionPolicyRequest  true  "record_type, retention_period_months, rules"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/retention/policies [put]
func (h *RetentionHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertRetentionPolicyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	policy := &entity.RecordRetentionPolicy{
		ID:                    uuid.New().String(),
		RecordType:            in.RecordType,
		RetentionPeriodMonths: in.RetentionPeriodMonths,
		Rules: entity.RetentionRules{
			AutoArchive:              in.Rules.AutoArchive,
			ImmutableAfterDays:       in.Rules.ImmutableAfterDays,
			RequiresApprovalToDelete: in.Rules.RequiresApprovalToDelete,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.svc.Upsert(c.UserContext(), policy); err != nil {
		if errors.Is(err, domain.ErrUnknownRecordType) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_RECORD_TYPE", Message: "tipo de registro desconocido"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "retention_period_months debe ser positivo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "política guardada"})
}

// List godoc
// @Summary      Listar políticas de retención visibles para el scope actual
// @Tags         retention
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.RecordRetentionPolicy
// @Router       /api/retention/policies [get]
func (h *RetentionHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "policies": list})
}

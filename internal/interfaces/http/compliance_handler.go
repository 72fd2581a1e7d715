package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cannaledger/cannaledger-api/internal/application/dto"
	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	"github.com/cannaledger/cannaledger-api/internal/domain"
)

// ComplianceHandler maneja discrepancias, conteos físicos y escaneos de
// patrones (protegido).
type ComplianceHandler struct {
	engine *losstheft.Engine
}

// NewComplianceHandler construye el handler.
func NewComplianceHandler(engine *losstheft.Engine) *ComplianceHandler {
	return &ComplianceHandler{engine: engine}
}

// AnalyzeDiscrepancy godoc
// @Summary      Analizar una discrepancia de inventario
// @Description  Clasifica el faltante; si resulta reportable crea el reporte
//
//	regulatorio, el evento de trazabilidad y el decremento del lote.
//
// @Tags         compliance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DiscrepancyRequest  true  "batch_id, expected_qty, actual_qty, justification_reason"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compliance/discrepancies [post]
func (h *ComplianceHandler) AnalyzeDiscrepancy(c *fiber.Ctx) error {
	var in dto.DiscrepancyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.BatchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "batch_id requerido"})
	}
	report, err := h.engine.AnalyzeDiscrepancy(c.UserContext(), losstheft.DiscrepancyInput{
		BatchID:             in.BatchID,
		ExpectedQty:         in.ExpectedQty,
		ActualQty:           in.ActualQty,
		JustificationReason: in.JustificationReason,
		ActorID:             GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_BATCH", Message: "el lote está en estado terminal"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if report == nil {
		return c.JSON(fiber.Map{"reportable": false})
	}
	return c.JSON(fiber.Map{"reportable": true, "report": report})
}

// RegisterCount godoc
// @Summary      Registrar un conteo físico de inventario
// @Description  Persiste el conteo y lo concilia contra la cantidad actual del
//
//	lote; un faltante reportable genera el reporte regulatorio.
//
// @Tags         compliance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterCountRequest  true  "batch_id, counted_quantity, justification_reason"
// @Success      201   {object}  map[string]interface{}
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/compliance/counts [post]
func (h *ComplianceHandler) RegisterCount(c *fiber.Ctx) error {
	var in dto.RegisterCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	count, report, err := h.engine.RegisterCount(c.UserContext(), losstheft.CountInput{
		BatchID:             in.BatchID,
		CountedQuantity:     in.CountedQuantity,
		JustificationReason: in.JustificationReason,
		ActorID:             GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_BATCH", Message: "el lote está en estado terminal"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	body := fiber.Map{"count": count, "reportable": report != nil}
	if report != nil {
		body["report"] = report
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// ListReports godoc
// @Summary      Listar reportes de pérdida/robo del scope actual
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de filas (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  entity.LossTheftReport
// @Router       /api/compliance/reports [get]
func (h *ComplianceHandler) ListReports(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.engine.ListReports(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "reports": list})
}

// DetectPatterns godoc
// @Summary      Escaneo de patrones sospechosos de pérdida
// @Description  Agrega los reportes recientes por instalación (30 días) y por
//
//	hora del día (90 días) y devuelve las alertas sobre umbral.
//
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  losstheft.PatternAlert
// @Router       /api/compliance/patterns [get]
func (h *ComplianceHandler) DetectPatterns(c *fiber.Ctx) error {
	alerts, err := h.engine.DetectPatterns(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(alerts), "alerts": alerts})
}

// VarianceAlerts godoc
// @Summary      Alertas de varianza de conteos sin justificar
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  losstheft.VarianceAlert
// @Router       /api/compliance/variance-alerts [get]
func (h *ComplianceHandler) VarianceAlerts(c *fiber.Ctx) error {
	alerts, err := h.engine.CheckVarianceAlerts(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(alerts), "alerts": alerts})
}

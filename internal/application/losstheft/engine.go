// Package losstheft implementa el motor de detección de pérdidas/robos:
// análisis de discrepancias, creación transaccional de reportes, detección de
// patrones y alertas de varianza.
package losstheft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appretention "github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	dombatch "github.com/cannaledger/cannaledger-api/internal/domain/batch"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	classifier "github.com/cannaledger/cannaledger-api/internal/domain/losstheft"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// maxNumberingAttempts reintentos de la transacción completa ante colisión
// del constraint único de report_number (creaciones concurrentes en el mismo
// tenant/año). La numeración nunca se hace con read-then-increment sin
// constraint: el índice único es quien arbitra.
const maxNumberingAttempts = 5

// notifyTimeout cota superior del despacho de notificaciones best-effort.
const notifyTimeout = 5 * time.Second

// Engine orquesta el análisis de discrepancias y los escaneos agregados.
type Engine struct {
	txRunner  TxRunner
	batches   repository.BatchRepository
	reports   repository.LossTheftReportRepository
	counts    repository.PhysicalCountRepository
	users     repository.UserRepository
	retention *appretention.Service
	notifier  Notifier
	log       *logger.Logger
}

// NewEngine construye el motor de pérdidas/robos.
func NewEngine(
	txRunner TxRunner,
	batches repository.BatchRepository,
	reports repository.LossTheftReportRepository,
	counts repository.PhysicalCountRepository,
	users repository.UserRepository,
	retention *appretention.Service,
	notifier Notifier,
	log *logger.Logger,
) *Engine {
	return &Engine{
		txRunner:  txRunner,
		batches:   batches,
		reports:   reports,
		counts:    counts,
		users:     users,
		retention: retention,
		notifier:  notifier,
		log:       log,
	}
}

// DiscrepancyInput entrada de AnalyzeDiscrepancy.
type DiscrepancyInput struct {
	BatchID             string
	ExpectedQty         decimal.Decimal
	ActualQty           decimal.Decimal
	JustificationReason string
	ActorID             string
}

// AnalyzeDiscrepancy analiza un faltante de inventario sobre un lote.
// Devuelve (nil, nil) cuando no hay faltante, cuando la causa es explicable
// dentro de su tope, o cuando el faltante no alcanza el umbral reportable del
// tipo de producto. En el resto de los casos crea el reporte regulatorio, el
// evento de trazabilidad y el decremento del lote dentro de una transacción,
// y notifica a los responsables de forma best-effort tras el commit.
func (e *Engine) AnalyzeDiscrepancy(ctx context.Context, input DiscrepancyInput) (*entity.LossTheftReport, error) {
	batch, err := e.batches.GetByID(ctx, input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	// Un lote en estado terminal no admite más mutaciones de inventario.
	if dombatch.IsTerminal(batch.Status) {
		return nil, domain.ErrConflict
	}

	discrepancy := input.ExpectedQty.Sub(input.ActualQty)
	cls := classifier.Classify(batch.ProductType, discrepancy, input.JustificationReason)

	switch cls.Outcome {
	case classifier.OutcomeNoShortage:
		return nil, nil
	case classifier.OutcomeExplainable:
		e.log.Info().
			Str("batch_id", batch.ID).
			Str("matched_reason", cls.MatchedReason).
			Str("discrepancy", discrepancy.String()).
			Str("cap", cls.ExplainableCap.String()).
			Msg("faltante explicable dentro del tope, no se genera reporte")
		return nil, nil
	case classifier.OutcomeBelowThreshold:
		e.log.Info().
			Str("batch_id", batch.ID).
			Str("discrepancy", discrepancy.String()).
			Str("threshold", cls.Threshold.String()).
			Msg("faltante bajo el umbral reportable, no se genera reporte")
		return nil, nil
	}

	actorID := input.ActorID
	if actorID == "" {
		if scope, ok := tenantctx.FromContext(ctx); ok {
			actorID = scope.ActorID
		}
	}

	now := time.Now()
	report := &entity.LossTheftReport{
		ID:                  uuid.New().String(),
		TenantID:            batch.TenantID,
		BatchID:             batch.ID,
		FacilityID:          batch.FacilityID,
		ReportedBy:          actorID,
		IncidentType:        entity.IncidentTypeLoss,
		IncidentCategory:    entity.IncidentCategoryLossUnexplained,
		IncidentDate:        now,
		DiscoveryDate:       now,
		QuantityLost:        discrepancy,
		Units:               batch.Units,
		EstimatedValue:      cls.EstimatedValue,
		Description:         input.JustificationReason,
		InvestigationStatus: entity.InvestigationPending,
		HCReportStatus:      entity.HCReportPending,
		CreatedAt:           now,
	}
	if err := e.retention.StampRetention(ctx, report, now); err != nil {
		return nil, err
	}

	event := &entity.TraceabilityEvent{
		ID:         uuid.New().String(),
		TenantID:   batch.TenantID,
		BatchID:    batch.ID,
		EventType:  entity.EventTypeLossTheft,
		Detail:     fmt.Sprintf("pérdida no explicada de %s %s detectada en conciliación", discrepancy.String(), batch.Units),
		OccurredAt: now,
		RecordedBy: actorID,
		CreatedAt:  now,
	}
	if err := e.retention.StampRetention(ctx, event, now); err != nil {
		return nil, err
	}

	// Reporte → evento → decremento, en ese orden y en una sola transacción.
	// Ante colisión de numeración se reintenta la transacción completa.
	var lastErr error
	for attempt := 0; attempt < maxNumberingAttempts; attempt++ {
		lastErr = e.txRunner.Run(ctx, func(
			reports repository.LossTheftReportRepository,
			batches repository.BatchRepository,
			events repository.TraceabilityEventRepository,
		) error {
			seq, err := reports.CountByYear(ctx, now.Year())
			if err != nil {
				return err
			}
			report.ReportNumber = fmt.Sprintf("LT-%d-%04d", now.Year(), seq+1)
			event.ReferenceID = report.ReportNumber

			if err := reports.Create(ctx, report); err != nil {
				return err
			}
			if err := events.Append(ctx, event); err != nil {
				return err
			}

			locked, err := batches.GetForUpdate(ctx, batch.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return domain.ErrNotFound
			}
			remaining := locked.CurrentUnits.Sub(discrepancy)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			return batches.UpdateUnits(ctx, locked.ID, remaining)
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, domain.ErrDuplicate) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("numeración de reporte agotó reintentos: %w", lastErr)
	}

	e.log.Warn().
		Str("report_number", report.ReportNumber).
		Str("batch_id", batch.ID).
		Str("quantity_lost", report.QuantityLost.String()).
		Str("estimated_value", report.EstimatedValue.String()).
		Msg("reporte de pérdida/robo generado")

	e.notifyResponsibles(ctx, batch, report)

	return report, nil
}

// ListReports lista los reportes del scope actual, más recientes primero.
func (e *Engine) ListReports(ctx context.Context, limit, offset int) ([]*entity.LossTheftReport, error) {
	return e.reports.List(ctx, limit, offset)
}

// notifyResponsibles avisa a facility managers y administradores globales.
// Best-effort: cualquier fallo se registra y se descarta, nunca revierte el
// reporte ya creado.
func (e *Engine) notifyResponsibles(ctx context.Context, batch *entity.Batch, report *entity.LossTheftReport) {
	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	users, err := e.users.ListNotifiables(notifyCtx, batch.FacilityID)
	if err != nil {
		e.log.Warn().Err(err).
			Str("report_number", report.ReportNumber).
			Msg("no se pudieron resolver los responsables a notificar")
		return
	}
	if len(users) == 0 {
		return
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	payload := NotificationPayload{
		Subject:        "Reporte de pérdida/robo " + report.ReportNumber,
		ReportNumber:   report.ReportNumber,
		BatchID:        report.BatchID,
		FacilityID:     report.FacilityID,
		QuantityLost:   report.QuantityLost,
		EstimatedValue: report.EstimatedValue,
		OccurredAt:     report.DiscoveryDate,
	}
	if err := e.notifier.Notify(notifyCtx, ids, payload); err != nil {
		e.log.Warn().Err(err).
			Str("report_number", report.ReportNumber).
			Msg("fallo al notificar responsables (best-effort, no se reintenta)")
	}
}

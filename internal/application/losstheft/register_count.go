package losstheft

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	classifier "github.com/cannaledger/cannaledger-api/internal/domain/losstheft"
)

// CountInput entrada de RegisterCount.
type CountInput struct {
	BatchID             string
	CountedQuantity     decimal.Decimal
	JustificationReason string
	ActorID             string
}

// RegisterCount registra un conteo físico de inventario y lo concilia contra
// la cantidad actual del lote: el faltante (si lo hay) pasa por
// AnalyzeDiscrepancy. El conteo queda justificado cuando el faltante resultó
// explicable o cuando generó reporte; si queda sin justificar alimenta las
// alertas de varianza.
func (e *Engine) RegisterCount(ctx context.Context, input CountInput) (*entity.InventoryPhysicalCount, *entity.LossTheftReport, error) {
	if input.BatchID == "" || input.CountedQuantity.IsNegative() {
		return nil, nil, domain.ErrInvalidInput
	}
	batch, err := e.batches.GetByID(ctx, input.BatchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}

	now := time.Now()
	count := &entity.InventoryPhysicalCount{
		ID:                  uuid.New().String(),
		TenantID:            batch.TenantID,
		BatchID:             batch.ID,
		FacilityID:          batch.FacilityID,
		CountedQuantity:     input.CountedQuantity,
		CountDate:           now,
		CountedBy:           input.ActorID,
		JustificationReason: input.JustificationReason,
		CreatedAt:           now,
	}
	if err := e.retention.StampRetention(ctx, count, now); err != nil {
		return nil, nil, err
	}
	if err := e.counts.Create(ctx, count); err != nil {
		return nil, nil, err
	}

	report, err := e.AnalyzeDiscrepancy(ctx, DiscrepancyInput{
		BatchID:             batch.ID,
		ExpectedQty:         batch.CurrentUnits,
		ActualQty:           input.CountedQuantity,
		JustificationReason: input.JustificationReason,
		ActorID:             input.ActorID,
	})
	if err != nil {
		return count, nil, err
	}

	cls := classifier.Classify(batch.ProductType, batch.CurrentUnits.Sub(input.CountedQuantity), input.JustificationReason)
	justified := cls.Outcome == classifier.OutcomeNoShortage ||
		cls.Outcome == classifier.OutcomeExplainable ||
		report != nil
	if justified {
		if err := e.counts.MarkJustified(ctx, count.ID); err != nil {
			return count, report, err
		}
		count.IsJustified = true
	}
	return count, report, nil
}

// Package batchops contiene los casos de uso sobre lotes: alta con estampado
// de retención, cambio de estado vía máquina de estados y archivado regido
// por el guardián de ciclo de vida.
package batchops

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appretention "github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	dombatch "github.com/cannaledger/cannaledger-api/internal/domain/batch"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	domretention "github.com/cannaledger/cannaledger-api/internal/domain/retention"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// BatchUseCase casos de uso de lotes.
type BatchUseCase struct {
	txRunner  TxRunner
	batches   repository.BatchRepository
	events    repository.TraceabilityEventRepository
	retention *appretention.Service
	log       *logger.Logger
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	txRunner TxRunner,
	batches repository.BatchRepository,
	events repository.TraceabilityEventRepository,
	retention *appretention.Service,
	log *logger.Logger,
) *BatchUseCase {
	return &BatchUseCase{
		txRunner:  txRunner,
		batches:   batches,
		events:    events,
		retention: retention,
		log:       log,
	}
}

// CreateBatchInput entrada para el alta de un lote.
type CreateBatchInput struct {
	FacilityID   string
	LotCode      string
	ProductType  string
	InitialUnits decimal.Decimal
	Units        string
	TenantID     *string // solo lo usa el admin global; un scope con tenant lo pisa
}

// Create da de alta un lote en estado active con su reloj de retención
// estampado y el tenant del contexto.
func (uc *BatchUseCase) Create(ctx context.Context, input CreateBatchInput) (*entity.Batch, error) {
	if input.FacilityID == "" || input.LotCode == "" || input.InitialUnits.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	batch := &entity.Batch{
		ID:           uuid.New().String(),
		TenantID:     input.TenantID,
		FacilityID:   input.FacilityID,
		LotCode:      input.LotCode,
		ProductType:  input.ProductType,
		Status:       entity.BatchStatusActive,
		CurrentUnits: input.InitialUnits,
		Units:        input.Units,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if scope, ok := tenantctx.FromContext(ctx); ok && !scope.Unscoped() {
		batch.TenantID = scope.TenantID
	}
	if err := uc.retention.StampRetention(ctx, batch, now); err != nil {
		return nil, err
	}
	if err := uc.batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// GetByID devuelve un lote visible para el scope actual.
func (uc *BatchUseCase) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	batch, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return batch, nil
}

// List lista lotes del scope actual con paginación.
func (uc *BatchUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Batch, error) {
	return uc.batches.List(ctx, limit, offset)
}

// ChangeStatus aplica una transición de estado validada por la máquina de
// estados, con bloqueo de fila, y deja el evento de trazabilidad en la misma
// transacción. Rechaza sin mutación parcial las transiciones inválidas.
func (uc *BatchUseCase) ChangeStatus(ctx context.Context, batchID, target, reason string) error {
	actorID := ""
	if scope, ok := tenantctx.FromContext(ctx); ok {
		actorID = scope.ActorID
	}
	now := time.Now()

	event := &entity.TraceabilityEvent{
		ID:         uuid.New().String(),
		BatchID:    batchID,
		EventType:  entity.EventTypeStatusChange,
		OccurredAt: now,
		RecordedBy: actorID,
		CreatedAt:  now,
	}
	if err := uc.retention.StampRetention(ctx, event, now); err != nil {
		return err
	}

	return uc.txRunner.Run(ctx, func(
		_ repository.LossTheftReportRepository,
		batches repository.BatchRepository,
		events repository.TraceabilityEventRepository,
	) error {
		batch, err := batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		previous := batch.Status
		if err := dombatch.Transition(batch, target, reason, actorID, now); err != nil {
			return err
		}
		if err := batches.UpdateStatus(ctx, batch); err != nil {
			return err
		}
		event.TenantID = batch.TenantID
		event.Detail = "cambio de estado " + previous + " → " + target + ": " + reason
		return events.Append(ctx, event)
	})
}

// Archive archiva un lote cuando su reloj de retención expiró. Rechaza con
// error tipado cuando el lote no es elegible (sin mutación parcial).
func (uc *BatchUseCase) Archive(ctx context.Context, batchID, reason string) error {
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	if err := domretention.Archive(batch, reason, now); err != nil {
		return err
	}
	if err := uc.batches.SetArchived(ctx, batch); err != nil {
		return err
	}

	actorID := ""
	if scope, ok := tenantctx.FromContext(ctx); ok {
		actorID = scope.ActorID
	}
	event := &entity.TraceabilityEvent{
		ID:         uuid.New().String(),
		TenantID:   batch.TenantID,
		BatchID:    batch.ID,
		EventType:  entity.EventTypeArchival,
		Detail:     "lote archivado: " + reason,
		OccurredAt: now,
		RecordedBy: actorID,
		CreatedAt:  now,
	}
	if err := uc.retention.StampRetention(ctx, event, now); err != nil {
		return err
	}
	if err := uc.events.Append(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("batch_id", batch.ID).Msg("lote archivado pero el evento de trazabilidad falló")
	}
	return nil
}

package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para Batch (DIP).
// Toda consulta se filtra por el tenant del contexto (ver tenantctx);
// el contexto sin tenant (admin global) consulta sin filtro.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para serializar
	// decrementos de cantidad concurrentes sobre el mismo lote.
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	UpdateStatus(ctx context.Context, batch *entity.Batch) error
	UpdateUnits(ctx context.Context, id string, units decimal.Decimal) error
	SetArchived(ctx context.Context, batch *entity.Batch) error
	List(ctx context.Context, limit, offset int) ([]*entity.Batch, error)
}

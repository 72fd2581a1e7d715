package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// UnjustifiedCountRow conteo físico sin justificar unido con la cantidad
// actual del lote (para el cálculo de varianza).
type UnjustifiedCountRow struct {
	CountID         string
	BatchID         string
	FacilityID      string
	CountedQuantity decimal.Decimal
	CurrentUnits    decimal.Decimal
	CountDate       time.Time
}

// PhysicalCountRepository define el puerto de persistencia de conteos físicos.
type PhysicalCountRepository interface {
	Create(ctx context.Context, count *entity.InventoryPhysicalCount) error
	MarkJustified(ctx context.Context, id string) error
	// ListUnjustifiedSince devuelve conteos no justificados desde la fecha
	// dada, con la cantidad actual del lote asociado.
	ListUnjustifiedSince(ctx context.Context, since time.Time) ([]UnjustifiedCountRow, error)
}

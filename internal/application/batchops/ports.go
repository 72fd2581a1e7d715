package batchops

import (
	"context"

	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios atados a esa tx (misma firma que losstheft.TxRunner; ambas
// las satisface el runner de postgres).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		reports repository.LossTheftReportRepository,
		batches repository.BatchRepository,
		events repository.TraceabilityEventRepository,
	) error) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cannaledger/cannaledger-api/internal/application/batchops"
	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

// Ensure TxRunner implements losstheft.TxRunner and batchops.TxRunner.
var _ losstheft.TxRunner = (*TxRunner)(nil)
var _ batchops.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Reporte → evento → decremento comparten esta tx.
func (r *TxRunner) Run(ctx context.Context, fn func(
	reports repository.LossTheftReportRepository,
	batches repository.BatchRepository,
	events repository.TraceabilityEventRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reports := NewLossTheftReportRepository(tx)
	batches := NewBatchRepository(tx)
	events := NewTraceabilityEventRepository(tx)

	if err := fn(reports, batches, events); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.PhysicalCountRepository = (*PhysicalCountRepo)(nil)

// PhysicalCountRepo implementación de PhysicalCountRepository sobre PostgreSQL.
type PhysicalCountRepo struct {
	q Querier
}

// NewPhysicalCountRepository construye el adaptador de conteos físicos.
func NewPhysicalCountRepository(q Querier) *PhysicalCountRepo {
	return &PhysicalCountRepo{q: q}
}

// Create persiste un conteo físico.
func (r *PhysicalCountRepo) Create(ctx context.Context, c *entity.InventoryPhysicalCount) error {
	query := `
		INSERT INTO inventory_physical_counts (
			id, tenant_id, batch_id, facility_id, counted_quantity, count_date,
			counted_by, justification_reason, is_justified,
			retention_expires_at, is_archived, archived_at, archive_reason,
			created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.TenantID, c.BatchID, c.FacilityID, c.CountedQuantity, c.CountDate,
		c.CountedBy, c.JustificationReason, c.IsJustified,
		c.RetentionExpiresAt, c.IsArchived, c.ArchivedAt, c.ArchiveReason,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert physical_count: %w", err)
	}
	return nil
}

// MarkJustified marca un conteo como justificado.
func (r *PhysicalCountRepo) MarkJustified(ctx context.Context, id string) error {
	query := `
		UPDATE inventory_physical_counts SET is_justified = true
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)`
	_, err := r.q.Exec(ctx, query, id, tenantParam(ctx))
	if err != nil {
		return fmt.Errorf("mark count justified: %w", err)
	}
	return nil
}

// ListUnjustifiedSince devuelve conteos no justificados desde la fecha dada,
// unidos con la cantidad actual del lote (cálculo de varianza).
func (r *PhysicalCountRepo) ListUnjustifiedSince(ctx context.Context, since time.Time) ([]repository.UnjustifiedCountRow, error) {
	query := `
		SELECT c.id, c.batch_id, c.facility_id, c.counted_quantity,
		       b.current_units, c.count_date
		FROM inventory_physical_counts c
		JOIN batches b ON b.id = c.batch_id
		WHERE c.is_justified = false
		  AND c.count_date >= $1
		  AND ($2::uuid IS NULL OR c.tenant_id = $2::uuid)
		ORDER BY c.count_date ASC`
	rows, err := r.q.Query(ctx, query, since, tenantParam(ctx))
	if err != nil {
		return nil, fmt.Errorf("list unjustified counts: %w", err)
	}
	defer rows.Close()
	var results []repository.UnjustifiedCountRow
	for rows.Next() {
		var row repository.UnjustifiedCountRow
		if err := rows.Scan(
			&row.CountID, &row.BatchID, &row.FacilityID, &row.CountedQuantity,
			&row.CurrentUnits, &row.CountDate,
		); err != nil {
			return nil, fmt.Errorf("scan unjustified count: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

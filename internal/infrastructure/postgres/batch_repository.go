package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `
	id, tenant_id, facility_id, lot_code, product_type, status, current_units,
	units, status_changed_at, status_change_reason, status_changed_by,
	is_recalled, retention_expires_at, is_archived, archived_at,
	archive_reason, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
// Toda consulta incluye el filtro de tenant tomado del contexto.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.TenantID, b.FacilityID, b.LotCode, b.ProductType, b.Status,
		b.CurrentUnits, b.Units, b.StatusChangedAt, b.StatusChangeReason,
		b.StatusChangedBy, b.IsRecalled, b.RetentionExpiresAt, b.IsArchived,
		b.ArchivedAt, b.ArchiveReason, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID dentro del scope del contexto.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantParam(ctx)), "get batch")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE) para
// serializar decrementos concurrentes de current_units.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantParam(ctx)), "get batch for update")
}

// UpdateStatus persiste los campos de la transición de estado.
func (r *BatchRepo) UpdateStatus(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches
		SET status = $2, status_changed_at = $3, status_change_reason = $4,
		    status_changed_by = $5, updated_at = now()
		WHERE id = $1 AND ($6::uuid IS NULL OR tenant_id = $6::uuid)`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, b.Status, b.StatusChangedAt, b.StatusChangeReason, b.StatusChangedBy,
		tenantParam(ctx),
	)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update batch status: lote %s fuera de scope", b.ID)
	}
	return nil
}

// UpdateUnits persiste la cantidad actual del lote.
func (r *BatchRepo) UpdateUnits(ctx context.Context, id string, units decimal.Decimal) error {
	query := `
		UPDATE batches SET current_units = $2, updated_at = now()
		WHERE id = $1 AND ($3::uuid IS NULL OR tenant_id = $3::uuid)`
	_, err := r.q.Exec(ctx, query, id, units, tenantParam(ctx))
	if err != nil {
		return fmt.Errorf("update batch units: %w", err)
	}
	return nil
}

// SetArchived persiste los campos de archivado del lote.
func (r *BatchRepo) SetArchived(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches
		SET is_archived = $2, archived_at = $3, archive_reason = $4, updated_at = now()
		WHERE id = $1 AND ($5::uuid IS NULL OR tenant_id = $5::uuid)`
	_, err := r.q.Exec(ctx, query, b.ID, b.IsArchived, b.ArchivedAt, b.ArchiveReason, tenantParam(ctx))
	if err != nil {
		return fmt.Errorf("archive batch: %w", err)
	}
	return nil
}

// List lista lotes del scope con paginación.
func (r *BatchRepo) List(ctx context.Context, limit, offset int) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE ($1::uuid IS NULL OR tenant_id = $1::uuid)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantParam(ctx), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BatchRepo) scanOne(row pgx.Row, op string) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.TenantID, &b.FacilityID, &b.LotCode, &b.ProductType, &b.Status,
		&b.CurrentUnits, &b.Units, &b.StatusChangedAt, &b.StatusChangeReason,
		&b.StatusChangedBy, &b.IsRecalled, &b.RetentionExpiresAt, &b.IsArchived,
		&b.ArchivedAt, &b.ArchiveReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

func (r *BatchRepo) scanRow(rows pgx.Rows) (*entity.Batch, error) {
	var b entity.Batch
	err := rows.Scan(
		&b.ID, &b.TenantID, &b.FacilityID, &b.LotCode, &b.ProductType, &b.Status,
		&b.CurrentUnits, &b.Units, &b.StatusChangedAt, &b.StatusChangeReason,
		&b.StatusChangedBy, &b.IsRecalled, &b.RetentionExpiresAt, &b.IsArchived,
		&b.ArchivedAt, &b.ArchiveReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

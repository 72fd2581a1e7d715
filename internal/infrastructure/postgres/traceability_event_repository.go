package postgres

import (
	"context"
	"fmt"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.TraceabilityEventRepository = (*TraceabilityEventRepo)(nil)

// TraceabilityEventRepo implementación del registro de auditoría append-only
// sobre PostgreSQL (usable con pool o tx). Sin UPDATE ni DELETE.
type TraceabilityEventRepo struct {
	q Querier
}

// NewTraceabilityEventRepository construye el adaptador de eventos.
func NewTraceabilityEventRepository(q Querier) *TraceabilityEventRepo {
	return &TraceabilityEventRepo{q: q}
}

// Append agrega un evento de trazabilidad.
func (r *TraceabilityEventRepo) Append(ctx context.Context, e *entity.TraceabilityEvent) error {
	query := `
		INSERT INTO traceability_events (
			id, tenant_id, batch_id, event_type, detail, reference_id,
			occurred_at, recorded_by, retention_expires_at, is_archived,
			archived_at, archive_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.BatchID, e.EventType, e.Detail, e.ReferenceID,
		e.OccurredAt, e.RecordedBy, e.RetentionExpiresAt, e.IsArchived,
		e.ArchivedAt, e.ArchiveReason, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append traceability_event: %w", err)
	}
	return nil
}

// ListByBatch lista eventos de un lote, más recientes primero.
func (r *TraceabilityEventRepo) ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]*entity.TraceabilityEvent, error) {
	query := `
		SELECT id, tenant_id, batch_id, event_type, detail, reference_id,
		       occurred_at, recorded_by, retention_expires_at, is_archived,
		       archived_at, archive_reason, created_at
		FROM traceability_events
		WHERE batch_id = $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)
		ORDER BY occurred_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, batchID, tenantParam(ctx), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list traceability_events: %w", err)
	}
	defer rows.Close()
	var list []*entity.TraceabilityEvent
	for rows.Next() {
		var e entity.TraceabilityEvent
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.BatchID, &e.EventType, &e.Detail, &e.ReferenceID,
			&e.OccurredAt, &e.RecordedBy, &e.RetentionExpiresAt, &e.IsArchived,
			&e.ArchivedAt, &e.ArchiveReason, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan traceability_event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.LossTheftReportRepository = (*LossTheftReportRepo)(nil)

const reportColumns = `
	id, tenant_id, report_number, batch_id, facility_id, reported_by,
	incident_type, incident_category, incident_date, discovery_date,
	quantity_lost, units, estimated_value, description, investigation_status,
	hc_report_status, retention_expires_at, is_archived, archived_at,
	archive_reason, created_at`

// LossTheftReportRepo implementación de LossTheftReportRepository sobre
// PostgreSQL (usable con pool o tx). El índice único
// (tenant_id, report_number) arbitra la numeración concurrente.
type LossTheftReportRepo struct {
	q Querier
}

// NewLossTheftReportRepository construye el adaptador de reportes.
func NewLossTheftReportRepository(q Querier) *LossTheftReportRepo {
	return &LossTheftReportRepo{q: q}
}

// Create persiste un reporte. Colisión de report_number → domain.ErrDuplicate
// para que el motor reintente la secuencia.
func (r *LossTheftReportRepo) Create(ctx context.Context, rep *entity.LossTheftReport) error {
	query := `
		INSERT INTO loss_theft_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.TenantID, rep.ReportNumber, rep.BatchID, rep.FacilityID,
		rep.ReportedBy, rep.IncidentType, rep.IncidentCategory, rep.IncidentDate,
		rep.DiscoveryDate, rep.QuantityLost, rep.Units, rep.EstimatedValue,
		rep.Description, rep.InvestigationStatus, rep.HCReportStatus,
		rep.RetentionExpiresAt, rep.IsArchived, rep.ArchivedAt, rep.ArchiveReason,
		rep.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert loss_theft_report: %w", err)
	}
	return nil
}

// GetByID obtiene un reporte por ID dentro del scope del contexto.
func (r *LossTheftReportRepo) GetByID(ctx context.Context, id string) (*entity.LossTheftReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM loss_theft_reports
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)`
	var rep entity.LossTheftReport
	err := r.q.QueryRow(ctx, query, id, tenantParam(ctx)).Scan(
		&rep.ID, &rep.TenantID, &rep.ReportNumber, &rep.BatchID, &rep.FacilityID,
		&rep.ReportedBy, &rep.IncidentType, &rep.IncidentCategory, &rep.IncidentDate,
		&rep.DiscoveryDate, &rep.QuantityLost, &rep.Units, &rep.EstimatedValue,
		&rep.Description, &rep.InvestigationStatus, &rep.HCReportStatus,
		&rep.RetentionExpiresAt, &rep.IsArchived, &rep.ArchivedAt, &rep.ArchiveReason,
		&rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loss_theft_report: %w", err)
	}
	return &rep, nil
}

// CountByYear cuenta los reportes del tenant creados en el año calendario dado.
func (r *LossTheftReportRepo) CountByYear(ctx context.Context, year int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loss_theft_reports
		WHERE EXTRACT(YEAR FROM created_at) = $1
		  AND ($2::uuid IS NULL OR tenant_id = $2::uuid)`
	var count int
	if err := r.q.QueryRow(ctx, query, year, tenantParam(ctx)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count loss_theft_reports by year: %w", err)
	}
	return count, nil
}

// List lista reportes del scope, más recientes primero.
func (r *LossTheftReportRepo) List(ctx context.Context, limit, offset int) ([]*entity.LossTheftReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM loss_theft_reports
		WHERE ($1::uuid IS NULL OR tenant_id = $1::uuid)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantParam(ctx), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loss_theft_reports: %w", err)
	}
	defer rows.Close()
	var list []*entity.LossTheftReport
	for rows.Next() {
		var rep entity.LossTheftReport
		if err := rows.Scan(
			&rep.ID, &rep.TenantID, &rep.ReportNumber, &rep.BatchID, &rep.FacilityID,
			&rep.ReportedBy, &rep.IncidentType, &rep.IncidentCategory, &rep.IncidentDate,
			&rep.DiscoveryDate, &rep.QuantityLost, &rep.Units, &rep.EstimatedValue,
			&rep.Description, &rep.InvestigationStatus, &rep.HCReportStatus,
			&rep.RetentionExpiresAt, &rep.IsArchived, &rep.ArchivedAt, &rep.ArchiveReason,
			&rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan loss_theft_report: %w", err)
		}
		list = append(list, &rep)
	}
	return list, rows.Err()
}

// FacilityTotalsSince agrupa reportes por instalación desde la fecha dada
// (escaneo de patrones, solo lectura).
func (r *LossTheftReportRepo) FacilityTotalsSince(ctx context.Context, since time.Time) ([]repository.FacilityLossAggregate, error) {
	query := `
		SELECT facility_id, COUNT(*), COALESCE(SUM(quantity_lost), 0)
		FROM loss_theft_reports
		WHERE created_at >= $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)
		GROUP BY facility_id
		ORDER BY COUNT(*) DESC`
	rows, err := r.q.Query(ctx, query, since, tenantParam(ctx))
	if err != nil {
		return nil, fmt.Errorf("facility totals: %w", err)
	}
	defer rows.Close()
	var results []repository.FacilityLossAggregate
	for rows.Next() {
		var row repository.FacilityLossAggregate
		if err := rows.Scan(&row.FacilityID, &row.ReportCount, &row.TotalQuantity); err != nil {
			return nil, fmt.Errorf("facility totals scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// HourlyCountsSince agrupa reportes por hora del día de discovery_date.
// Si el motor no soporta EXTRACT(HOUR ...) el error sube tal cual; el caller
// lo trata como best-effort.
func (r *LossTheftReportRepo) HourlyCountsSince(ctx context.Context, since time.Time) ([]repository.HourlyLossAggregate, error) {
	query := `
		SELECT EXTRACT(HOUR FROM discovery_date)::int AS hour, COUNT(*)
		FROM loss_theft_reports
		WHERE created_at >= $1 AND ($2::uuid IS NULL OR tenant_id = $2::uuid)
		GROUP BY hour
		ORDER BY hour`
	rows, err := r.q.Query(ctx, query, since, tenantParam(ctx))
	if err != nil {
		return nil, fmt.Errorf("hourly counts: %w", err)
	}
	defer rows.Close()
	var results []repository.HourlyLossAggregate
	for rows.Next() {
		var row repository.HourlyLossAggregate
		if err := rows.Scan(&row.Hour, &row.ReportCount); err != nil {
			return nil, fmt.Errorf("hourly counts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

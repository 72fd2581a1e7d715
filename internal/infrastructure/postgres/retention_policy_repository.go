package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.RetentionPolicyRepository = (*RetentionPolicyRepo)(nil)

// RetentionPolicyRepo implementación de RetentionPolicyRepository sobre
// PostgreSQL. Este repo recibe el tenant explícito (no lo toma del contexto):
// las filas globales (tenant_id nulo) deben ser legibles desde cualquier
// tenant para el fallback del resolver. El índice único parcial sobre
// (record_type, tenant_id) WHERE is_active garantiza a lo sumo una política
// activa por par.
type RetentionPolicyRepo struct {
	q Querier
}

// NewRetentionPolicyRepository construye el adaptador de políticas.
func NewRetentionPolicyRepository(q Querier) *RetentionPolicyRepo {
	return &RetentionPolicyRepo{q: q}
}

// ActiveByTypeAndTenant devuelve la política activa para (record_type,
// tenant_id); tenantID nil consulta la global. (nil, nil) si no existe.
func (r *RetentionPolicyRepo) ActiveByTypeAndTenant(ctx context.Context, recordType string, tenantID *string) (*entity.RecordRetentionPolicy, error) {
	query := `
		SELECT id, tenant_id, record_type, retention_period_months,
		       retention_rules, is_active, created_at, updated_at
		FROM record_retention_policies
		WHERE record_type = $1
		  AND tenant_id IS NOT DISTINCT FROM $2::uuid
		  AND is_active = true`
	var p entity.RecordRetentionPolicy
	var rules []byte
	err := r.q.QueryRow(ctx, query, recordType, tenantID).Scan(
		&p.ID, &p.TenantID, &p.RecordType, &p.RetentionPeriodMonths,
		&rules, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get retention policy: %w", err)
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.Rules); err != nil {
			return nil, fmt.Errorf("decode retention_rules: %w", err)
		}
	}
	return &p, nil
}

// Upsert crea o reemplaza la política activa de (record_type, tenant_id).
func (r *RetentionPolicyRepo) Upsert(ctx context.Context, p *entity.RecordRetentionPolicy) error {
	rules, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("encode retention_rules: %w", err)
	}
	query := `
		INSERT INTO record_retention_policies (
			id, tenant_id, record_type, retention_period_months,
			retention_rules, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (record_type, COALESCE(tenant_id, '00000000-0000-0000-0000-000000000000'::uuid)) WHERE is_active
		DO UPDATE SET retention_period_months = EXCLUDED.retention_period_months,
		              retention_rules = EXCLUDED.retention_rules,
		              updated_at = now()`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.RecordType, p.RetentionPeriodMonths, rules, p.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("upsert retention policy: %w", err)
	}
	return nil
}

// List devuelve las políticas visibles para el scope del contexto: las del
// tenant más las globales (scope sin filtro ve todas).
func (r *RetentionPolicyRepo) List(ctx context.Context) ([]*entity.RecordRetentionPolicy, error) {
	query := `
		SELECT id, tenant_id, record_type, retention_period_months,
		       retention_rules, is_active, created_at, updated_at
		FROM record_retention_policies
		WHERE ($1::uuid IS NULL OR tenant_id = $1::uuid OR tenant_id IS NULL)
		ORDER BY record_type, tenant_id NULLS FIRST`
	rows, err := r.q.Query(ctx, query, tenantParam(ctx))
	if err != nil {
		return nil, fmt.Errorf("list retention policies: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecordRetentionPolicy
	for rows.Next() {
		var p entity.RecordRetentionPolicy
		var rules []byte
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.RecordType, &p.RetentionPeriodMonths,
			&rules, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan retention policy: %w", err)
		}
		if len(rules) > 0 {
			if err := json.Unmarshal(rules, &p.Rules); err != nil {
				return nil, fmt.Errorf("decode retention_rules: %w", err)
			}
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

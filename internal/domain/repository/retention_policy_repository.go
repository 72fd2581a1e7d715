package repository

import (
	"context"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// RetentionPolicyRepository define el puerto de persistencia de políticas de
// retención. A diferencia del resto de los repos, recibe el tenant explícito:
// las filas globales (tenant_id nulo) deben ser legibles desde cualquier
// tenant para el fallback del resolver.
type RetentionPolicyRepository interface {
	// ActiveByTypeAndTenant devuelve la política activa para (record_type,
	// tenant_id); tenantID nil consulta la política global. (nil, nil) si no existe.
	ActiveByTypeAndTenant(ctx context.Context, recordType string, tenantID *string) (*entity.RecordRetentionPolicy, error)
	// Upsert crea o reemplaza la política activa de (record_type, tenant_id).
	Upsert(ctx context.Context, policy *entity.RecordRetentionPolicy) error
	List(ctx context.Context) ([]*entity.RecordRetentionPolicy, error)
}

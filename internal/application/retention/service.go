// Package retention implementa el resolver de políticas de retención por
// tenant y el guardián de ciclo de vida de registros retenibles.
package retention

import (
	"context"
	"time"

	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
	domretention "github.com/cannaledger/cannaledger-api/internal/domain/retention"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// Service resuelve políticas de retención y estampa/archiva registros.
type Service struct {
	policies repository.RetentionPolicyRepository
	log      *logger.Logger
}

// NewService construye el servicio de retención.
func NewService(policies repository.RetentionPolicyRepository, log *logger.Logger) *Service {
	return &Service{policies: policies, log: log}
}

// Resolve devuelve la política aplicable a un tipo de registro:
// política activa del tenant del contexto → política global activa →
// default sintético de 24 meses. El fallback al default es recuperable y se
// registra siempre (auditoría); un tipo de registro desconocido es error de
// validación.
func (s *Service) Resolve(ctx context.Context, recordType string) (*entity.RecordRetentionPolicy, error) {
	if !domretention.IsKnownRecordType(recordType) {
		return nil, domain.ErrUnknownRecordType
	}

	if scope, ok := tenantctx.FromContext(ctx); ok && !scope.Unscoped() {
		policy, err := s.policies.ActiveByTypeAndTenant(ctx, recordType, scope.TenantID)
		if err != nil {
			return nil, err
		}
		if policy != nil {
			return policy, nil
		}
	}

	policy, err := s.policies.ActiveByTypeAndTenant(ctx, recordType, nil)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		return policy, nil
	}

	s.log.Info().
		Str("record_type", recordType).
		Int("default_months", domretention.DefaultPeriodMonths).
		Msg("sin política de retención configurada, aplicando default sintético")
	return domretention.DefaultPolicy(recordType), nil
}

// StampRetention calcula y estampa retention_expires_at al crear un registro
// retenible. El período resuelto nunca baja del piso regulatorio del tipo
// (7 años para reportes de pérdida/robo).
func (s *Service) StampRetention(ctx context.Context, rec entity.Retainable, now time.Time) error {
	policy, err := s.Resolve(ctx, rec.RecordType())
	if err != nil {
		return err
	}
	months := policy.RetentionPeriodMonths
	if floor := domretention.MinimumPeriodMonths(rec.RecordType()); months < floor {
		months = floor
	}
	created := rec.CreatedAtTime()
	if created.IsZero() {
		created = now
	}
	expires := domretention.ExpiresAt(created, months)
	rec.Retention().RetentionExpiresAt = &expires
	return nil
}

// IsImmutable responde si el registro ya entró en su ventana de inmutabilidad
// según la política resuelta. Este servicio solo responde; el bloqueo de
// ediciones es responsabilidad de la capa CRUD que escribe.
func (s *Service) IsImmutable(ctx context.Context, rec entity.Retainable, now time.Time) (bool, error) {
	policy, err := s.Resolve(ctx, rec.RecordType())
	if err != nil {
		return false, err
	}
	return domretention.IsImmutable(rec, policy, now), nil
}

// RequiresApprovalToDelete refleja la regla requires_approval_to_delete de la
// política resuelta.
func (s *Service) RequiresApprovalToDelete(ctx context.Context, rec entity.Retainable) (bool, error) {
	policy, err := s.Resolve(ctx, rec.RecordType())
	if err != nil {
		return false, err
	}
	return policy.Rules.RequiresApprovalToDelete, nil
}

// Upsert crea o reemplaza la política activa de un (record_type, tenant).
// El tenant se toma del contexto: scope con tenant escribe su propia
// política, scope sin filtro (admin global) escribe la política global.
func (s *Service) Upsert(ctx context.Context, policy *entity.RecordRetentionPolicy) error {
	if !domretention.IsKnownRecordType(policy.RecordType) {
		return domain.ErrUnknownRecordType
	}
	if policy.RetentionPeriodMonths <= 0 {
		return domain.ErrInvalidInput
	}
	if scope, ok := tenantctx.FromContext(ctx); ok && !scope.Unscoped() {
		policy.TenantID = scope.TenantID
	}
	policy.IsActive = true
	return s.policies.Upsert(ctx, policy)
}

// List devuelve las políticas visibles para el scope actual.
func (s *Service) List(ctx context.Context) ([]*entity.RecordRetentionPolicy, error) {
	return s.policies.List(ctx)
}

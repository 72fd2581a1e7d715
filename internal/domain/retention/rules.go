// Package retention contiene las reglas puras de retención documental:
// períodos por defecto, elegibilidad de archivado y ventana de inmutabilidad.
// La resolución de políticas por tenant vive en application/retention.
package retention

import (
	"time"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// Períodos de retención (meses). DefaultPeriodMonths es la única fuente de
// verdad del fallback: el resolver y el estampado usan el mismo valor.
// LossTheftPeriodMonths es la obligación de 7 años para reportes de
// pérdida/robo, más estricta que el default genérico.
const (
	DefaultPeriodMonths   = 24
	LossTheftPeriodMonths = 84
)

// knownRecordTypes tipos de registro con reloj de retención.
var knownRecordTypes = map[string]bool{
	entity.RecordTypeBatch:             true,
	entity.RecordTypeTraceabilityEvent: true,
	entity.RecordTypePhysicalCount:     true,
	entity.RecordTypeLossTheftReport:   true,
}

// IsKnownRecordType indica si el tipo de registro participa del esquema de retención.
func IsKnownRecordType(recordType string) bool { return knownRecordTypes[recordType] }

// DefaultPolicy construye la política sintética por defecto (24 meses, sin
// reglas especiales) para un tipo de registro.
func DefaultPolicy(recordType string) *entity.RecordRetentionPolicy {
	return &entity.RecordRetentionPolicy{
		RecordType:            recordType,
		RetentionPeriodMonths: DefaultPeriodMonths,
		Rules:                 entity.RetentionRules{},
		IsActive:              true,
	}
}

// MinimumPeriodMonths piso regulatorio por tipo de registro: los reportes de
// pérdida/robo nunca retienen menos de 7 años aunque la política resuelta
// diga otra cosa.
func MinimumPeriodMonths(recordType string) int {
	if recordType == entity.RecordTypeLossTheftReport {
		return LossTheftPeriodMonths
	}
	return 0
}

// ExpiresAt calcula retention_expires_at desde la fecha de creación.
func ExpiresAt(createdAt time.Time, periodMonths int) time.Time {
	return createdAt.AddDate(0, periodMonths, 0)
}

// IsEligibleForArchival un registro es archivable cuando no está archivado,
// tiene reloj de retención y éste ya expiró (now >= retention_expires_at).
func IsEligibleForArchival(rec entity.Retainable, now time.Time) bool {
	rf := rec.Retention()
	if rf.IsArchived || rf.RetentionExpiresAt == nil {
		return false
	}
	return !now.Before(*rf.RetentionExpiresAt)
}

// Archive archiva el registro si es elegible; si no, retorna el rechazo
// tipado sin mutación parcial.
func Archive(rec entity.Retainable, reason string, now time.Time) error {
	rf := rec.Retention()
	if rf.IsArchived {
		return domain.ErrAlreadyArchived
	}
	if !IsEligibleForArchival(rec, now) {
		return domain.ErrRetentionNotExpired
	}
	rf.IsArchived = true
	rf.ArchivedAt = &now
	rf.ArchiveReason = reason
	return nil
}

// IsImmutable indica si el registro ya entró en su ventana de inmutabilidad:
// now >= created_at + immutable_after_days de la política. Con
// immutable_after_days == 0 el registro nunca se bloquea por esta regla.
// Este motor solo responde la pregunta; el bloqueo de ediciones es
// responsabilidad de la capa que escribe.
func IsImmutable(rec entity.Retainable, policy *entity.RecordRetentionPolicy, now time.Time) bool {
	if policy == nil || policy.Rules.ImmutableAfterDays <= 0 {
		return false
	}
	lock := rec.CreatedAtTime().AddDate(0, 0, policy.Rules.ImmutableAfterDays)
	return !now.Before(lock)
}

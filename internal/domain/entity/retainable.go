package entity

import "time"

// Tipos de registro regulado sujetos a retención documental.
// Deben coincidir con el CHECK de la tabla record_retention_policies.
const (
	RecordTypeBatch              = "batch"
	RecordTypeTraceabilityEvent  = "traceability_event"
	RecordTypePhysicalCount      = "inventory_physical_count"
	RecordTypeLossTheftReport    = "loss_theft_report"
)

// RetentionFields campos comunes de todo registro retenible.
// Se embeben en Batch, TraceabilityEvent, InventoryPhysicalCount y LossTheftReport.
type RetentionFields struct {
	RetentionExpiresAt *time.Time
	IsArchived         bool
	ArchivedAt         *time.Time
	ArchiveReason      string
}

// Retainable es el contrato que cumple cualquier registro con reloj de retención.
// RecordType determina la política aplicable; CreatedAtTime ancla la ventana de inmutabilidad.
type Retainable interface {
	RecordType() string
	CreatedAtTime() time.Time
	Retention() *RetentionFields
}

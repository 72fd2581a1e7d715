package entity

import "time"

// Tipos de evento de trazabilidad.
const (
	EventTypeLossTheft     = "loss_theft"
	EventTypeStatusChange  = "status_change"
	EventTypePhysicalCount = "physical_count"
	EventTypeArchival      = "archival"
)

// TraceabilityEvent es el registro de auditoría append-only que exige la
// normativa: cada mutación relevante de un lote deja un evento.
type TraceabilityEvent struct {
	ID          string
	TenantID    *string
	BatchID     string
	EventType   string // ver constantes EventType*
	Detail      string
	ReferenceID string // ej. número de reporte LT-YYYY-NNNN
	OccurredAt  time.Time
	RecordedBy  string // UserID
	RetentionFields
	CreatedAt time.Time
}

// RecordType implementa Retainable.
func (e *TraceabilityEvent) RecordType() string { return RecordTypeTraceabilityEvent }

// CreatedAtTime implementa Retainable.
func (e *TraceabilityEvent) CreatedAtTime() time.Time { return e.CreatedAt }

// Retention implementa Retainable.
func (e *TraceabilityEvent) Retention() *RetentionFields { return &e.RetentionFields }

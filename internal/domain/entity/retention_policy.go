package entity

import "time"

// RetentionRules reglas estructuradas de una política de retención
// (columna JSONB retention_rules).
type RetentionRules struct {
	AutoArchive              bool `json:"auto_archive"`
	ImmutableAfterDays       int  `json:"immutable_after_days"`
	RequiresApprovalToDelete bool `json:"requires_approval_to_delete"`
}

// RecordRetentionPolicy configura la retención de un tipo de registro.
// TenantID nil = política global por defecto; la política específica del
// tenant, cuando existe, prevalece sobre la global. Invariante: a lo sumo
// una política activa por (record_type, tenant_id).
type RecordRetentionPolicy struct {
	ID                    string
	TenantID              *string
	RecordType            string // ver constantes RecordType*
	RetentionPeriodMonths int
	Rules                 RetentionRules
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

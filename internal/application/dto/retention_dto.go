package dto

// RetentionRulesDTO reglas estructuradas de una política de retención.
type RetentionRulesDTO struct {
	AutoArchive              bool `json:"auto_archive"`
	ImmutableAfterDays       int  `json:"immutable_after_days"`
	RequiresApprovalToDelete bool `json:"requires_approval_to_delete"`
}

// UpsertRetentionPolicyRequest crea o reemplaza la política activa de un
// tipo de registro para el tenant del contexto (o la global, admin).
type UpsertRetentionPolicyRequest struct {
	RecordType            string            `json:"record_type"`
	RetentionPeriodMonths int               `json:"retention_period_months"`
	Rules                 RetentionRulesDTO `json:"rules"`
}

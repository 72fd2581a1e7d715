package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipo de incidente reportable.
const (
	IncidentTypeLoss  = "loss"
	IncidentTypeTheft = "theft"
)

// Categorías de incidente (enum cerrado; CHECK en loss_theft_reports).
const (
	IncidentCategoryLossUnexplained = "loss_unexplained"
	IncidentCategoryLossTransit     = "loss_transit"
	IncidentCategoryTheftBreakIn    = "theft_break_in"
	IncidentCategoryTheftInternal   = "theft_internal"
	IncidentCategoryDiversion       = "diversion"
)

// Estados de investigación interna.
const (
	InvestigationPending    = "pending"
	InvestigationInProgress = "in_progress"
	InvestigationResolved   = "resolved"
	InvestigationClosed     = "closed"
)

// Estados del flujo de presentación ante el regulador.
const (
	HCReportPending      = "pending"
	HCReportSubmitted    = "submitted"
	HCReportAcknowledged = "acknowledged"
	HCReportClosed       = "closed"
)

// LossTheftReport es el registro de incidente de pérdida/robo presentable al
// regulador. Inmutable tras su creación salvo los estados de flujo
// (investigation_status, hc_report_status). ReportNumber tiene formato
// LT-<año>-<secuencia de 4 dígitos>, único por tenant.
type LossTheftReport struct {
	ID                  string
	TenantID            *string
	ReportNumber        string // LT-YYYY-NNNN
	BatchID             string
	FacilityID          string
	ReportedBy          string // UserID; vacío cuando lo genera el motor
	IncidentType        string // loss | theft
	IncidentCategory    string // ver constantes IncidentCategory*
	IncidentDate        time.Time
	DiscoveryDate       time.Time
	QuantityLost        decimal.Decimal
	Units               string
	EstimatedValue      decimal.Decimal // QuantityLost × precio por unidad del tipo de producto
	Description         string
	InvestigationStatus string // ver constantes Investigation*
	HCReportStatus      string // ver constantes HCReport*
	RetentionFields
	CreatedAt time.Time
}

// RecordType implementa Retainable.
func (r *LossTheftReport) RecordType() string { return RecordTypeLossTheftReport }

// CreatedAtTime implementa Retainable.
func (r *LossTheftReport) CreatedAtTime() time.Time { return r.CreatedAt }

// Retention implementa Retainable.
func (r *LossTheftReport) Retention() *RetentionFields { return &r.RetentionFields }

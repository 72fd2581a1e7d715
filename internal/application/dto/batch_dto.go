package dto

import "github.com/shopspring/decimal"

// CreateBatchRequest alta de un lote de cultivo/producción.
type CreateBatchRequest struct {
	FacilityID   string          `json:"facility_id"`
	LotCode      string          `json:"lot_code"`
	ProductType  string          `json:"product_type"` // dried, fresh, oil, extract, plants
	InitialUnits decimal.Decimal `json:"initial_units"`
	Units        string          `json:"units"` // g, ml, plants
	TenantID     string          `json:"tenant_id,omitempty"` // solo admin global
}

// ChangeBatchStatusRequest transición de estado regulatorio de un lote.
type ChangeBatchStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ArchiveRequest archivado de un registro con retención expirada.
type ArchiveRequest struct {
	Reason string `json:"reason"`
}

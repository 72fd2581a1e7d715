package dto

import "github.com/shopspring/decimal"

// DiscrepancyRequest análisis de una discrepancia de inventario sobre un lote.
type DiscrepancyRequest struct {
	BatchID             string          `json:"batch_id"`
	ExpectedQty         decimal.Decimal `json:"expected_qty"`
	ActualQty           decimal.Decimal `json:"actual_qty"`
	JustificationReason string          `json:"justification_reason,omitempty"`
}

// RegisterCountRequest registro de un conteo físico de inventario.
type RegisterCountRequest struct {
	BatchID             string          `json:"batch_id"`
	CountedQuantity     decimal.Decimal `json:"counted_quantity"`
	JustificationReason string          `json:"justification_reason,omitempty"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryPhysicalCount es un conteo físico de inventario sobre un lote.
// IsJustified indica que la discrepancia (si la hubo) quedó explicada o
// generó reporte; los conteos no justificados alimentan las alertas de varianza.
type InventoryPhysicalCount struct {
	ID                  string
	TenantID            *string
	BatchID             string
	FacilityID          string
	CountedQuantity     decimal.Decimal
	CountDate           time.Time
	CountedBy           string // UserID
	JustificationReason string
	IsJustified         bool
	RetentionFields
	CreatedAt time.Time
}

// RecordType implementa Retainable.
func (c *InventoryPhysicalCount) RecordType() string { return RecordTypePhysicalCount }

// CreatedAtTime implementa Retainable.
func (c *InventoryPhysicalCount) CreatedAtTime() time.Time { return c.CreatedAt }

// Retention implementa Retainable.
func (c *InventoryPhysicalCount) Retention() *RetentionFields { return &c.RetentionFields }

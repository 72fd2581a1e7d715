package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados regulatorios de un lote (deben coincidir con el CHECK de la tabla batches).
// destroyed y sold son terminales: un lote nunca vuelve a transicionar desde ellos.
const (
	BatchStatusActive     = "active"
	BatchStatusOnHold     = "on_hold"
	BatchStatusQuarantine = "quarantine"
	BatchStatusReleased   = "released"
	BatchStatusInTransit  = "in_transit"
	BatchStatusDestroyed  = "destroyed"
	BatchStatusSold       = "sold"
	BatchStatusArchived   = "archived"
)

// Tipos de producto reconocidos por las tablas de umbrales y precios.
const (
	ProductTypeDried   = "dried"
	ProductTypeFresh   = "fresh"
	ProductTypeOil     = "oil"
	ProductTypeExtract = "extract"
	ProductTypePlants  = "plants"
)

// Batch representa un lote de cultivo/producción con ciclo de vida regulado.
// CurrentUnits nunca es negativo; el lote jamás se elimina físicamente (solo se archiva).
type Batch struct {
	ID                 string
	TenantID           *string
	FacilityID         string
	LotCode            string // código de lote visible al regulador
	ProductType        string // ver constantes ProductType*
	Status             string // ver constantes BatchStatus*
	CurrentUnits       decimal.Decimal
	Units              string // unidad de medida: g, ml, plants
	StatusChangedAt    *time.Time
	StatusChangeReason string
	StatusChangedBy    string // UserID
	IsRecalled         bool
	RetentionFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordType implementa Retainable.
func (b *Batch) RecordType() string { return RecordTypeBatch }

// CreatedAtTime implementa Retainable.
func (b *Batch) CreatedAtTime() time.Time { return b.CreatedAt }

// Retention implementa Retainable.
func (b *Batch) Retention() *RetentionFields { return &b.RetentionFields }

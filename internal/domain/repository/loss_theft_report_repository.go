package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// FacilityLossAggregate agregado de reportes por instalación (escaneo de patrones).
type FacilityLossAggregate struct {
	FacilityID    string
	ReportCount   int
	TotalQuantity decimal.Decimal
}

// HourlyLossAggregate agregado de reportes por hora del día de discovery_date.
type HourlyLossAggregate struct {
	Hour        int // 0-23
	ReportCount int
}

// LossTheftReportRepository define el puerto de persistencia para los
// reportes de pérdida/robo. Create debe retornar domain.ErrDuplicate ante
// colisión de report_number (constraint único por tenant) para que el motor
// reintente la secuencia.
type LossTheftReportRepository interface {
	Create(ctx context.Context, report *entity.LossTheftReport) error
	GetByID(ctx context.Context, id string) (*entity.LossTheftReport, error)
	// CountByYear cuenta los reportes del tenant creados en el año calendario
	// dado; alimenta la secuencia LT-<año>-NNNN.
	CountByYear(ctx context.Context, year int) (int, error)
	List(ctx context.Context, limit, offset int) ([]*entity.LossTheftReport, error)
	// FacilityTotalsSince agrupa reportes por instalación desde la fecha dada.
	FacilityTotalsSince(ctx context.Context, since time.Time) ([]FacilityLossAggregate, error)
	// HourlyCountsSince agrupa reportes por hora de discovery_date desde la
	// fecha dada. Puede fallar si el motor de almacenamiento no soporta la
	// extracción de hora; el caller trata ese fallo como best-effort.
	HourlyCountsSince(ctx context.Context, since time.Time) ([]HourlyLossAggregate, error)
}

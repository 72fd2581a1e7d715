package losstheft

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que reporte, evento de
// trazabilidad y decremento del lote se apliquen de forma atómica y en orden.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		reports repository.LossTheftReportRepository,
		batches repository.BatchRepository,
		events repository.TraceabilityEventRepository,
	) error) error
}

// NotificationPayload contenido del aviso a los responsables tras crear un
// reporte de pérdida/robo.
type NotificationPayload struct {
	Subject        string          `json:"subject"`
	ReportNumber   string          `json:"report_number"`
	BatchID        string          `json:"batch_id"`
	FacilityID     string          `json:"facility_id"`
	QuantityLost   decimal.Decimal `json:"quantity_lost"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Notifier despacha avisos best-effort: un fallo se registra pero nunca
// revierte ni falla la operación principal.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, payload NotificationPayload) error
}

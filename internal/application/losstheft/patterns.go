package losstheft

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Severidades de alerta.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Tipos de patrón detectado.
const (
	PatternFacilityCluster = "facility_cluster"
	PatternHourlyCluster   = "hourly_cluster"
)

// Umbrales de los escaneos agregados.
var (
	facilityWindowDays    = 30
	facilityMinReports    = 3
	facilityMinQuantity   = decimal.NewFromInt(100)
	hourlyWindowDays      = 90
	hourlyMinReports      = 3
	highSeverityMinCount  = 5
	varianceWindowDays    = 7
	varianceMinAlert      = decimal.NewFromFloat(1.0)
	varianceHighThreshold = decimal.NewFromInt(10)
)

// PatternAlert patrón sospechoso detectado sobre los reportes recientes.
type PatternAlert struct {
	Kind          string          `json:"kind"` // facility_cluster | hourly_cluster
	FacilityID    string          `json:"facility_id,omitempty"`
	Hour          int             `json:"hour,omitempty"` // 0-23, solo hourly_cluster
	ReportCount   int             `json:"report_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity,omitempty"`
	Severity      string          `json:"severity"`
	WindowDays    int             `json:"window_days"`
}

// VarianceAlert conteo físico sin justificar con varianza relevante.
type VarianceAlert struct {
	CountID     string          `json:"count_id"`
	BatchID     string          `json:"batch_id"`
	FacilityID  string          `json:"facility_id"`
	Variance    decimal.Decimal `json:"variance"`
	Severity    string          `json:"severity"`
	DaysPending int             `json:"days_pending"`
	CountDate   time.Time       `json:"count_date"`
}

// DetectPatterns corre dos escaneos agregados de solo lectura sobre los
// reportes del tenant:
//   - por instalación (30 días): alerta con count >= 3 o suma de cantidad
//     perdida >= 100; severidad high con count >= 5.
//   - por hora del día de discovery_date (90 días): alerta con count >= 3;
//     severidad high con count >= 5. Este escaneo es best-effort: si la
//     extracción de hora falla se registra y se omite, con resultados
//     parciales en lugar de fallar la llamada completa.
func (e *Engine) DetectPatterns(ctx context.Context) ([]PatternAlert, error) {
	now := time.Now()
	var alerts []PatternAlert

	facilityRows, err := e.reports.FacilityTotalsSince(ctx, now.AddDate(0, 0, -facilityWindowDays))
	if err != nil {
		return nil, err
	}
	for _, row := range facilityRows {
		if row.ReportCount < facilityMinReports && row.TotalQuantity.LessThan(facilityMinQuantity) {
			continue
		}
		alerts = append(alerts, PatternAlert{
			Kind:          PatternFacilityCluster,
			FacilityID:    row.FacilityID,
			ReportCount:   row.ReportCount,
			TotalQuantity: row.TotalQuantity,
			Severity:      severityByCount(row.ReportCount),
			WindowDays:    facilityWindowDays,
		})
	}

	hourlyRows, err := e.reports.HourlyCountsSince(ctx, now.AddDate(0, 0, -hourlyWindowDays))
	if err != nil {
		e.log.Warn().Err(err).Msg("escaneo por hora no disponible, se omite (resultados parciales)")
		return alerts, nil
	}
	for _, row := range hourlyRows {
		if row.ReportCount < hourlyMinReports {
			continue
		}
		alerts = append(alerts, PatternAlert{
			Kind:        PatternHourlyCluster,
			Hour:        row.Hour,
			ReportCount: row.ReportCount,
			Severity:    severityByCount(row.ReportCount),
			WindowDays:  hourlyWindowDays,
		})
	}

	return alerts, nil
}

// CheckVarianceAlerts revisa los conteos físicos sin justificar de los
// últimos 7 días: varianza = |cantidad actual del lote - cantidad contada|;
// alerta cuando >= 1.0, severidad high cuando >= 10.
func (e *Engine) CheckVarianceAlerts(ctx context.Context) ([]VarianceAlert, error) {
	now := time.Now()
	rows, err := e.counts.ListUnjustifiedSince(ctx, now.AddDate(0, 0, -varianceWindowDays))
	if err != nil {
		return nil, err
	}

	var alerts []VarianceAlert
	for _, row := range rows {
		variance := row.CurrentUnits.Sub(row.CountedQuantity).Abs()
		if variance.LessThan(varianceMinAlert) {
			continue
		}
		severity := SeverityMedium
		if variance.GreaterThanOrEqual(varianceHighThreshold) {
			severity = SeverityHigh
		}
		alerts = append(alerts, VarianceAlert{
			CountID:     row.CountID,
			BatchID:     row.BatchID,
			FacilityID:  row.FacilityID,
			Variance:    variance,
			Severity:    severity,
			DaysPending: int(now.Sub(row.CountDate).Hours() / 24),
			CountDate:   row.CountDate,
		})
	}
	return alerts, nil
}

func severityByCount(count int) string {
	if count >= highSeverityMinCount {
		return SeverityHigh
	}
	return SeverityMedium
}

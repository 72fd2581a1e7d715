// Package losstheft contiene el clasificador puro de discrepancias de
// inventario: tabla de causas explicables con topes, umbrales reportables por
// tipo de producto y tabla de precios para el valor estimado de la pérdida.
// Las tablas son exportadas para que sean auditables de forma independiente.
package losstheft

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// Outcome resultado de la clasificación de una discrepancia.
type Outcome string

const (
	OutcomeNoShortage     Outcome = "no_shortage"     // sin faltante (o sobrante)
	OutcomeExplainable    Outcome = "explainable"     // causa reconocida dentro del tope
	OutcomeBelowThreshold Outcome = "below_threshold" // faltante bajo el mínimo reportable
	OutcomeReportable     Outcome = "reportable"      // exige reporte ante el regulador
)

// ReasonCap par causa normalizada → cantidad máxima explicable.
type ReasonCap struct {
	Keyword string
	Cap     decimal.Decimal
}

// ExplainableReasons catálogo ordenado de causas operativas reconocidas.
// El match es por substring sobre la causa normalizada.
var ExplainableReasons = []ReasonCap{
	{Keyword: "sampling", Cap: decimal.NewFromFloat(5.0)},
	{Keyword: "testing", Cap: decimal.NewFromFloat(5.0)},
	{Keyword: "quality_control", Cap: decimal.NewFromFloat(5.0)},
	{Keyword: "lab_testing", Cap: decimal.NewFromFloat(5.0)},
	{Keyword: "processing_loss", Cap: decimal.NewFromFloat(50.0)},
	{Keyword: "moisture_loss", Cap: decimal.NewFromFloat(20.0)},
	{Keyword: "trimming_waste", Cap: decimal.NewFromFloat(30.0)},
	{Keyword: "normal_waste", Cap: decimal.NewFromFloat(10.0)},
	{Keyword: "research", Cap: decimal.NewFromFloat(25.0)},
}

// unmatchedReasonCap tope cuando la causa existe pero no está en el catálogo.
var unmatchedReasonCap = decimal.NewFromFloat(1.0)

// reportingThresholds cantidad mínima reportable por tipo de producto.
var reportingThresholds = map[string]decimal.Decimal{
	entity.ProductTypeDried:   decimal.NewFromFloat(1.0),
	entity.ProductTypeFresh:   decimal.NewFromFloat(5.0),
	entity.ProductTypeOil:     decimal.NewFromFloat(1.0),
	entity.ProductTypeExtract: decimal.NewFromFloat(1.0),
	entity.ProductTypePlants:  decimal.NewFromInt(1),
}

// defaultThreshold umbral para tipos de producto no reconocidos.
var defaultThreshold = decimal.NewFromFloat(1.0)

// unitPrices precio por unidad (gramo/ml/planta) para el valor estimado.
// En un sistema productivo esta tabla es configurable por política.
var unitPrices = map[string]decimal.Decimal{
	entity.ProductTypeDried:   decimal.NewFromFloat(5.00),
	entity.ProductTypeFresh:   decimal.NewFromFloat(1.00),
	entity.ProductTypeOil:     decimal.NewFromFloat(50.00),
	entity.ProductTypeExtract: decimal.NewFromFloat(40.00),
}

// defaultUnitPrice precio para tipos no reconocidos.
var defaultUnitPrice = decimal.NewFromFloat(5.00)

// Classification resultado detallado de Classify, con los valores derivados
// que exige la auditoría.
type Classification struct {
	Outcome        Outcome
	MatchedReason  string          // keyword del catálogo que hizo match ("" si no hubo)
	ExplainableCap decimal.Decimal // tope aplicado cuando hubo causa
	Threshold      decimal.Decimal // umbral reportable del tipo de producto
	EstimatedValue decimal.Decimal // solo con sentido cuando Outcome == OutcomeReportable
}

// NormalizeReason normaliza una causa para el match: minúsculas y cualquier
// secuencia no alfanumérica colapsada a "_".
func NormalizeReason(reason string) string {
	var b strings.Builder
	lastUnderscore := true // descarta separadores al inicio
	for _, r := range strings.ToLower(strings.TrimSpace(reason)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ExplainableCapFor busca la causa en el catálogo (substring sobre la forma
// normalizada) y devuelve el tope aplicable. Una causa presente pero no
// reconocida recibe el tope mínimo de 1.0.
func ExplainableCapFor(reason string) (limit decimal.Decimal, matched string, ok bool) {
	normalized := NormalizeReason(reason)
	if normalized == "" {
		return decimal.Zero, "", false
	}
	for _, rc := range ExplainableReasons {
		if strings.Contains(normalized, rc.Keyword) {
			return rc.Cap, rc.Keyword, true
		}
	}
	return unmatchedReasonCap, "", true
}

// ReportingThreshold devuelve la cantidad mínima reportable para el tipo de producto.
func ReportingThreshold(productType string) decimal.Decimal {
	if t, ok := reportingThresholds[productType]; ok {
		return t
	}
	return defaultThreshold
}

// UnitPrice devuelve el precio por unidad para el valor estimado de pérdida.
func UnitPrice(productType string) decimal.Decimal {
	if p, ok := unitPrices[productType]; ok {
		return p
	}
	return defaultUnitPrice
}

// Classify clasifica una discrepancia (expected - actual) según las reglas:
//  1. discrepancy <= 0 → NoShortage (solo se analizan faltantes).
//  2. causa presente y discrepancy <= tope → Explainable.
//  3. discrepancy < umbral del tipo de producto → BelowThreshold.
//  4. en el resto de los casos → Reportable, con EstimatedValue calculado.
func Classify(productType string, discrepancy decimal.Decimal, reason string) Classification {
	threshold := ReportingThreshold(productType)
	cls := Classification{Threshold: threshold}

	if !discrepancy.GreaterThan(decimal.Zero) {
		cls.Outcome = OutcomeNoShortage
		return cls
	}

	if limit, matched, ok := ExplainableCapFor(reason); ok {
		cls.ExplainableCap = limit
		cls.MatchedReason = matched
		if discrepancy.LessThanOrEqual(limit) {
			cls.Outcome = OutcomeExplainable
			return cls
		}
	}

	if discrepancy.LessThan(threshold) {
		cls.Outcome = OutcomeBelowThreshold
		return cls
	}

	cls.Outcome = OutcomeReportable
	cls.EstimatedValue = discrepancy.Mul(UnitPrice(productType))
	return cls
}

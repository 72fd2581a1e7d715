// Package batch contiene la máquina de estados del ciclo de vida regulatorio
// de un lote. Lógica pura: sin persistencia ni dependencias externas.
package batch

import (
	"time"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// validStatuses estados reconocidos por la máquina.
var validStatuses = map[string]bool{
	entity.BatchStatusActive:     true,
	entity.BatchStatusOnHold:     true,
	entity.BatchStatusQuarantine: true,
	entity.BatchStatusReleased:   true,
	entity.BatchStatusInTransit:  true,
	entity.BatchStatusDestroyed:  true,
	entity.BatchStatusSold:       true,
	entity.BatchStatusArchived:   true,
}

// terminalStatuses estados desde los que no se permite ninguna transición.
var terminalStatuses = map[string]bool{
	entity.BatchStatusDestroyed: true,
	entity.BatchStatusSold:      true,
}

// IsValidStatus indica si un estado es reconocido.
func IsValidStatus(status string) bool { return validStatuses[status] }

// IsTerminal indica si un estado es terminal (destroyed, sold).
func IsTerminal(status string) bool { return terminalStatuses[status] }

// CanTransition valida la regla de transición:
// falso si el estado actual es terminal, si target == current (no-op) o si
// target no es un estado reconocido; verdadero en el resto de los casos.
func CanTransition(current, target string) bool {
	if terminalStatuses[current] {
		return false
	}
	if target == current {
		return false
	}
	return validStatuses[target]
}

// Transition aplica una transición validada sobre el lote: setea status,
// status_changed_at, status_change_reason y status_changed_by de forma
// atómica. Si la transición no es válida retorna ErrInvalidTransition sin
// mutar el lote (el caller decide persistir o no).
func Transition(b *entity.Batch, target, reason, actorID string, now time.Time) error {
	if !CanTransition(b.Status, target) {
		return domain.ErrInvalidTransition
	}
	b.Status = target
	b.StatusChangedAt = &now
	b.StatusChangeReason = reason
	b.StatusChangedBy = actorID
	return nil
}

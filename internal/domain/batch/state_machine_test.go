package batch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cannaledger/cannaledger-api/internal/domain"
	dombatch "github.com/cannaledger/cannaledger-api/internal/domain/batch"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// CanTransition
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_TransicionesValidas(t *testing.T) {
	cases := []struct {
		current, target string
	}{
		{entity.BatchStatusActive, entity.BatchStatusOnHold},
		{entity.BatchStatusActive, entity.BatchStatusQuarantine},
		{entity.BatchStatusQuarantine, entity.BatchStatusReleased},
		{entity.BatchStatusReleased, entity.BatchStatusInTransit},
		{entity.BatchStatusInTransit, entity.BatchStatusSold},
		{entity.BatchStatusActive, entity.BatchStatusDestroyed},
		{entity.BatchStatusOnHold, entity.BatchStatusActive},
	}
	for _, c := range cases {
		assert.True(t, dombatch.CanTransition(c.current, c.target),
			"%s → %s debe ser una transición válida", c.current, c.target)
	}
}

func TestCanTransition_NoOpRechazado(t *testing.T) {
	assert.False(t, dombatch.CanTransition(entity.BatchStatusActive, entity.BatchStatusActive),
		"target == current debe rechazarse, aun siendo un estado válido")
}

func TestCanTransition_EstadosTerminalesBloquean(t *testing.T) {
	for _, terminal := range []string{entity.BatchStatusDestroyed, entity.BatchStatusSold} {
		assert.False(t, dombatch.CanTransition(terminal, entity.BatchStatusActive),
			"desde %s no debe permitirse ninguna transición", terminal)
		assert.True(t, dombatch.IsTerminal(terminal))
	}
}

func TestCanTransition_TargetDesconocidoRechazado(t *testing.T) {
	assert.False(t, dombatch.CanTransition(entity.BatchStatusActive, "vaporized"),
		"un estado destino no reconocido debe rechazarse")
	assert.False(t, dombatch.IsValidStatus("vaporized"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transition — mutación atómica del lote
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_SeteaCamposDeAuditoria(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	b := &entity.Batch{ID: "b-1", Status: entity.BatchStatusActive}

	err := dombatch.Transition(b, entity.BatchStatusQuarantine, "resultado de laboratorio pendiente", "user-1", now)
	require.NoError(t, err)

	assert.Equal(t, entity.BatchStatusQuarantine, b.Status)
	require.NotNil(t, b.StatusChangedAt)
	assert.Equal(t, now, *b.StatusChangedAt)
	assert.Equal(t, "resultado de laboratorio pendiente", b.StatusChangeReason)
	assert.Equal(t, "user-1", b.StatusChangedBy)
}

func TestTransition_InvalidaNoMutaElLote(t *testing.T) {
	now := time.Now()
	b := &entity.Batch{ID: "b-1", Status: entity.BatchStatusDestroyed}

	err := dombatch.Transition(b, entity.BatchStatusActive, "reactivar", "user-1", now)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, entity.BatchStatusDestroyed, b.Status, "el estado no debe cambiar")
	assert.Nil(t, b.StatusChangedAt, "los campos de auditoría no deben tocarse")
	assert.Empty(t, b.StatusChangeReason)
}

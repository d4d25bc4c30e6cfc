// internal/workflow/workflow_test.go
package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

func TestOrder(t *testing.T) {
	assert.Equal(t, 0, Order(models.SaleStatusBorrador))
	assert.Equal(t, 3, Order(models.SaleStatusEnRevision))
	assert.Equal(t, 8, Order(models.SaleStatusCompletado))

	// Side-states and garbage sit outside the sequence
	assert.Equal(t, -1, Order(models.SaleStatusRechazado))
	assert.Equal(t, -1, Order(models.SaleStatusCancelado))
	assert.Equal(t, -1, Order(models.SaleStatus("inexistente")))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.SaleStatusCompletado))
	assert.True(t, IsTerminal(models.SaleStatusRechazado))
	assert.True(t, IsTerminal(models.SaleStatusCancelado))

	assert.False(t, IsTerminal(models.SaleStatusBorrador))
	assert.False(t, IsTerminal(models.SaleStatusEnviado))
	assert.False(t, IsTerminal(models.SaleStatusFirmado))
}

func TestStepStateFor(t *testing.T) {
	tests := []struct {
		name    string
		step    models.SaleStatus
		current models.SaleStatus
		want    StepState
	}{
		{"earlier step is completed", models.SaleStatusBorrador, models.SaleStatusEnviado, StepCompleted},
		{"matching step is current", models.SaleStatusEnviado, models.SaleStatusEnviado, StepCurrent},
		{"later step is pending", models.SaleStatusFirmado, models.SaleStatusEnviado, StepPending},
		{"first step current on a new sale", models.SaleStatusBorrador, models.SaleStatusBorrador, StepCurrent},
		{"everything completed at the end", models.SaleStatusFirmado, models.SaleStatusCompletado, StepCompleted},

		// Rejection: steps before revision completed, revision itself rejected,
		// everything after stays pending.
		{"rejected sale keeps earlier steps", models.SaleStatusBorrador, models.SaleStatusRechazado, StepCompleted},
		{"rejected sale keeps DDJJ step", models.SaleStatusEsperandoDDJJ, models.SaleStatusRechazado, StepCompleted},
		{"revision step shows the rejection", models.SaleStatusEnRevision, models.SaleStatusRechazado, StepRejected},
		{"steps after revision stay pending", models.SaleStatusAprobadoParaTemplates, models.SaleStatusRechazado, StepPending},
		{"final step pending after rejection", models.SaleStatusCompletado, models.SaleStatusRechazado, StepPending},

		// Cancellation renders no progress at all.
		{"cancelled sale shows first step pending", models.SaleStatusBorrador, models.SaleStatusCancelado, StepPending},
		{"cancelled sale shows last step pending", models.SaleStatusCompletado, models.SaleStatusCancelado, StepPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepStateFor(tt.step, tt.current))
		})
	}
}

func TestStepStateForFullDerivation(t *testing.T) {
	// For every regular current status, the derived states must partition the
	// sequence into completed / current / pending with no gaps.
	for currentIdx, current := range Steps {
		for stepIdx, step := range Steps {
			got := StepStateFor(step.Key, current.Key)
			switch {
			case stepIdx < currentIdx:
				assert.Equal(t, StepCompleted, got, "step %s under %s", step.Key, current.Key)
			case stepIdx == currentIdx:
				assert.Equal(t, StepCurrent, got, "step %s under %s", step.Key, current.Key)
			default:
				assert.Equal(t, StepPending, got, "step %s under %s", step.Key, current.Key)
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.SaleStatus
		to   models.SaleStatus
		want bool
	}{
		{"adjacent forward step", models.SaleStatusBorrador, models.SaleStatusPreparandoDocumentos, true},
		{"forward jump", models.SaleStatusBorrador, models.SaleStatusEnviado, true},
		{"backward move", models.SaleStatusEnviado, models.SaleStatusBorrador, false},
		{"self transition", models.SaleStatusEnviado, models.SaleStatusEnviado, false},

		{"reject from revision", models.SaleStatusEnRevision, models.SaleStatusRechazado, true},
		{"reject from draft", models.SaleStatusBorrador, models.SaleStatusRechazado, false},
		{"reject from sent", models.SaleStatusEnviado, models.SaleStatusRechazado, false},

		{"cancel from draft", models.SaleStatusBorrador, models.SaleStatusCancelado, true},
		{"cancel from signed", models.SaleStatusFirmado, models.SaleStatusCancelado, true},
		{"cancel a completed sale", models.SaleStatusCompletado, models.SaleStatusCancelado, false},
		{"cancel a rejected sale", models.SaleStatusRechazado, models.SaleStatusCancelado, false},

		{"leave completed", models.SaleStatusCompletado, models.SaleStatusEnviado, false},
		{"leave rejected", models.SaleStatusRechazado, models.SaleStatusEnRevision, false},
		{"leave cancelled", models.SaleStatusCancelado, models.SaleStatusBorrador, false},

		{"unknown target", models.SaleStatusBorrador, models.SaleStatus("otro"), false},
		{"unknown source", models.SaleStatus("otro"), models.SaleStatusEnviado, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestReadyForSignature(t *testing.T) {
	assert.True(t, ReadyForSignature(false, 0), "no template means no gate")
	assert.True(t, ReadyForSignature(false, 3))
	assert.False(t, ReadyForSignature(true, 0), "template without responses blocks")
	assert.True(t, ReadyForSignature(true, 1))
	assert.True(t, ReadyForSignature(true, 5))
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, models.TraceRechazado, ActionFor(models.SaleStatusRechazado))
	assert.Equal(t, models.TraceCambioEstado, ActionFor(models.SaleStatusCancelado))
	assert.Equal(t, models.TraceAprobado, ActionFor(models.SaleStatusAprobadoParaTemplates))
	assert.Equal(t, models.TraceEnlaceFirmaCreado, ActionFor(models.SaleStatusEnviado))
	assert.Equal(t, models.TraceEstadoActualizado, ActionFor(models.SaleStatus("otro")))
}

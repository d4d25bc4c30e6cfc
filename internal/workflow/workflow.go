// internal/workflow/workflow.go

// Package workflow holds the sale state machine: the canonical step order,
// the per-step display state derivation, and the transition rules. Everything
// here is a pure function of status strings; persistence lives in services.
package workflow

import (
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
	StepRejected  StepState = "rejected"
)

type Step struct {
	Key    models.SaleStatus
	Label  string
	Action models.TraceAction
}

// Steps is the canonical forward sequence. rechazado and cancelado sit
// outside it as absorbing side-states.
var Steps = []Step{
	{models.SaleStatusBorrador, "Borrador", models.TraceVentaCreada},
	{models.SaleStatusPreparandoDocumentos, "Preparando documentos", models.TraceDocumentosCargados},
	{models.SaleStatusEsperandoDDJJ, "Esperando DDJJ", models.TraceDDJJCompletada},
	{models.SaleStatusEnRevision, "En revisión", models.TraceEnviadoAAuditoria},
	{models.SaleStatusAprobadoParaTemplates, "Aprobado para templates", models.TraceAprobado},
	{models.SaleStatusListoParaEnviar, "Listo para enviar", models.TraceDocumentosGenerados},
	{models.SaleStatusEnviado, "Enviado", models.TraceEnlaceFirmaCreado},
	{models.SaleStatusFirmado, "Firmado", models.TraceFirmaCompletada},
	{models.SaleStatusCompletado, "Completado", models.TraceVentaCompletada},
}

var stepOrder = func() map[models.SaleStatus]int {
	m := make(map[models.SaleStatus]int, len(Steps))
	for i, s := range Steps {
		m[s.Key] = i
	}
	return m
}()

// Order returns the index of a status in the canonical sequence, or -1 for
// the side-states and unknown values.
func Order(status models.SaleStatus) int {
	if i, ok := stepOrder[status]; ok {
		return i
	}
	return -1
}

// IsTerminal reports whether no further transitions may leave the status.
func IsTerminal(status models.SaleStatus) bool {
	switch status {
	case models.SaleStatusCompletado, models.SaleStatusRechazado, models.SaleStatusCancelado:
		return true
	}
	return false
}

// StepStateFor derives the display/audit state of one step given the sale's
// current status. Pure; re-evaluated on every render rather than cached.
func StepStateFor(stepKey, current models.SaleStatus) StepState {
	stepIdx := Order(stepKey)
	if stepIdx < 0 {
		return StepPending
	}

	switch current {
	case models.SaleStatusRechazado:
		revisionIdx := Order(models.SaleStatusEnRevision)
		switch {
		case stepIdx < revisionIdx:
			return StepCompleted
		case stepIdx == revisionIdx:
			return StepRejected
		default:
			return StepPending
		}
	case models.SaleStatusCancelado:
		// The cancellation banner is rendered separately.
		return StepPending
	}

	currentIdx := Order(current)
	switch {
	case stepIdx < currentIdx:
		return StepCompleted
	case stepIdx == currentIdx:
		return StepCurrent
	default:
		return StepPending
	}
}

// CanTransition reports whether moving from one status to another is legal.
// Progress is monotonic: forward moves only, with rechazado reachable solely
// from en_revision and cancelado reachable from any non-terminal state.
func CanTransition(from, to models.SaleStatus) bool {
	if from == to {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	if to == models.SaleStatusCancelado {
		return true
	}
	if to == models.SaleStatusRechazado {
		return from == models.SaleStatusEnRevision
	}

	fromIdx, toIdx := Order(from), Order(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx > fromIdx
}

// ReadyForSignature is the questionnaire gate: a sale without a template is
// always ready; one with a template needs at least one completed response.
func ReadyForSignature(hasTemplate bool, responseCount int64) bool {
	return !hasTemplate || responseCount > 0
}

// ActionFor maps a target status to the trace action recorded when entering
// it. Unknown targets fall back to the generic status-change action.
func ActionFor(to models.SaleStatus) models.TraceAction {
	switch to {
	case models.SaleStatusRechazado:
		return models.TraceRechazado
	case models.SaleStatusCancelado:
		return models.TraceCambioEstado
	}
	for _, s := range Steps {
		if s.Key == to {
			return s.Action
		}
	}
	return models.TraceEstadoActualizado
}

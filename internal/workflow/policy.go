package workflow

import (
	"fmt"

	"examloop-backend/internal/model"
)

// Action is a user-initiated workflow operation subject to gating.
type Action string

const (
	ActionSaveDraft        Action = "save_draft"
	ActionRequestEval      Action = "request_eval"
	ActionCompose          Action = "compose"
	ActionCompare          Action = "compare"
	ActionOpenFinalize     Action = "finalize"
	ActionCompleteLearning Action = "complete_learning"
	ActionAuxTask          Action = "aux_task"
)

// ErrActionBlocked reports why an action is currently not permitted. The
// check runs before any network call, so a blocked action never reaches the
// backend.
type ErrActionBlocked struct {
	Action Action
	Reason string
}

func (e *ErrActionBlocked) Error() string {
	return fmt.Sprintf("action %s blocked: %s", e.Action, e.Reason)
}

func blocked(action Action, reason string) error {
	return &ErrActionBlocked{Action: action, Reason: reason}
}

// Check applies the phase gating rules to one action. A nil return means
// the action may proceed. ActionCompleteLearning additionally requires the
// due-card set to be empty, which Check cannot see; use
// CanCompleteLearning for the full gate.
func Check(view ViewState, action Action) error {
	if view.PhaseStatus == model.PhaseStatusRunning && action != ActionSaveDraft {
		return blocked(action, "another phase action is still running")
	}
	if view.SessionCompleted {
		return blocked(action, "session is completed")
	}

	switch action {
	case ActionSaveDraft:
		if !view.CanEditDraft {
			return blocked(action, "draft is not editable")
		}
	case ActionRequestEval:
		if view.CurrentPhase != model.PhaseDraft {
			return blocked(action, "evaluation is only available while drafting")
		}
	case ActionCompose, ActionCompare:
		if view.LastEval == nil {
			return blocked(action, "evaluation has not run yet")
		}
		if view.CurrentPhase != model.PhaseAwaitFinalize && view.CurrentPhase != model.PhaseAwaitNewGroup {
			return blocked(action, "session is not awaiting finalization")
		}
	case ActionOpenFinalize:
		// A failed phase must be retried before the session can move on;
		// only the triggering task actions stay open for that retry.
		if view.PhaseStatus == model.PhaseStatusFailed {
			return blocked(action, "last phase action failed and must be retried")
		}
	case ActionAuxTask:
		// Manual gap-highlight/refine triggers; only the completed and
		// running gates apply.
	case ActionCompleteLearning:
		if view.PhaseStatus == model.PhaseStatusFailed {
			return blocked(action, "last phase action failed and must be retried")
		}
		if view.CurrentPhase != model.PhaseLearning {
			return blocked(action, "session is not in the learning phase")
		}
	default:
		return blocked(action, "unknown action")
	}
	return nil
}

// CanCompleteLearning is the full completion gate: learning phase, nothing
// running, and a loaded, empty due-card set. A not-yet-loaded due set keeps
// the gate closed.
func CanCompleteLearning(view ViewState, dueLoaded bool, dueCount int) bool {
	if Check(view, ActionCompleteLearning) != nil {
		return false
	}
	return dueLoaded && dueCount == 0
}

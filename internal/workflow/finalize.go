package workflow

import (
	"errors"

	"examloop-backend/internal/model"
)

// Finalize target modes.
const (
	FinalizeModeReuse = "reuse"
	FinalizeModeNew   = "new"
)

// FinalizeTarget is the default reuse-or-new decision offered to the user
// before finalizing. The user may override both mode and target.
type FinalizeTarget struct {
	Mode       string
	GroupID    uint
	GroupTitle string
}

// ResolveFinalizeTarget picks the default finalize destination from the last
// compare decision and the question's existing answer groups.
//
// A reuse decision pointing at a group that has since been deleted falls
// back to the first remaining group rather than silently creating a new one.
func ResolveFinalizeTarget(lastCompare *model.CompareResult, existingGroups []model.AnswerGroup, questionTitle string) FinalizeTarget {
	if lastCompare != nil && lastCompare.Decision == model.CompareDecisionNewGroup {
		return FinalizeTarget{Mode: FinalizeModeNew, GroupTitle: questionTitle}
	}

	if lastCompare != nil && lastCompare.Decision == model.CompareDecisionReuse {
		for _, group := range existingGroups {
			if group.ID == lastCompare.MatchedAnswerGroupID {
				return FinalizeTarget{Mode: FinalizeModeReuse, GroupID: group.ID}
			}
		}
		if len(existingGroups) > 0 {
			return FinalizeTarget{Mode: FinalizeModeReuse, GroupID: existingGroups[0].ID}
		}
	}

	if len(existingGroups) > 0 {
		return FinalizeTarget{Mode: FinalizeModeReuse, GroupID: existingGroups[0].ID}
	}

	return FinalizeTarget{Mode: FinalizeModeNew, GroupTitle: questionTitle}
}

// BuildFinalizePayload turns a target plus the answer fields into the
// finalize request body. It validates at the boundary: a payload with
// neither a group to reuse nor a title for a new group never reaches the
// backend.
func BuildFinalizePayload(target FinalizeTarget, answerTitle, answerText, groupDescriptor string) (model.SessionFinalizePayload, error) {
	payload := model.SessionFinalizePayload{
		AnswerTitle:     answerTitle,
		AnswerText:      answerText,
		GroupDescriptor: groupDescriptor,
	}
	if answerTitle == "" {
		return payload, errors.New("answer title is required")
	}

	switch target.Mode {
	case FinalizeModeReuse:
		if target.GroupID == 0 {
			return payload, errors.New("reuse mode requires a group")
		}
		groupID := target.GroupID
		payload.AnswerGroupID = &groupID
	case FinalizeModeNew:
		if target.GroupTitle == "" {
			return payload, errors.New("new-group mode requires a group title")
		}
		payload.GroupTitle = target.GroupTitle
	default:
		return payload, errors.New("unknown finalize mode")
	}
	return payload, nil
}

package workflow

import (
	"strings"

	"examloop-backend/internal/model"
)

// ReviewComparison holds word/char counts of the current draft against the
// review session's source answer.
type ReviewComparison struct {
	SourceWords  int `json:"source_words"`
	CurrentWords int `json:"current_words"`
	DiffWords    int `json:"diff_words"`
	SourceChars  int `json:"source_chars"`
	CurrentChars int `json:"current_chars"`
	DiffChars    int `json:"diff_chars"`
}

// ViewState is everything the workflow surface needs to render and gate one
// session, derived from the latest fetched records.
type ViewState struct {
	CurrentPhase         string
	PhaseStatus          string
	PhaseError           string
	LastEval             *model.EvalResult
	LastCompose          *model.ComposeResult
	LastCompare          *model.CompareResult
	SessionCompleted     bool
	CanEditDraft         bool
	IsReviewSession      bool
	ReviewSourceAnswerID *uint
	ReviewComparison     *ReviewComparison
}

// Project derives the ViewState for a session. It is a pure function of its
// inputs: same session, history and source answer always yield the same
// state. sourceAnswer may be nil when the review source is not loaded, in
// which case no comparison is produced.
func Project(session *model.Session, history *model.SessionHistory, sourceAnswer *model.Answer) ViewState {
	state := session.ProgressState
	state.Normalize()

	completed := session.Status == model.SessionStatusCompleted

	view := ViewState{
		CurrentPhase:     state.Phase,
		PhaseStatus:      state.PhaseStatus,
		PhaseError:       state.PhaseError,
		LastEval:         state.LastEval,
		LastCompose:      state.LastCompose,
		LastCompare:      state.LastCompare,
		SessionCompleted: completed,
		CanEditDraft: session.AnswerID == nil &&
			!completed &&
			state.PhaseStatus != model.PhaseStatusRunning,
		IsReviewSession: session.SessionType == model.SessionTypeReview,
	}

	if state.ReviewSourceAnswerID != 0 {
		id := state.ReviewSourceAnswerID
		view.ReviewSourceAnswerID = &id
	} else if session.AnswerID != nil {
		id := *session.AnswerID
		view.ReviewSourceAnswerID = &id
	}

	if sourceAnswer != nil {
		view.ReviewComparison = compareTexts(sourceAnswer.Text, session.UserAnswerDraft)
	}

	return view
}

func compareTexts(source, current string) *ReviewComparison {
	sourceTrimmed := strings.TrimSpace(source)
	currentTrimmed := strings.TrimSpace(current)

	cmp := &ReviewComparison{
		SourceWords:  len(strings.Fields(sourceTrimmed)),
		CurrentWords: len(strings.Fields(currentTrimmed)),
		SourceChars:  len([]rune(sourceTrimmed)),
		CurrentChars: len([]rune(currentTrimmed)),
	}
	cmp.DiffWords = cmp.CurrentWords - cmp.SourceWords
	cmp.DiffChars = cmp.CurrentChars - cmp.SourceChars
	return cmp
}

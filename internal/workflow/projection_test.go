package workflow

import (
	"reflect"
	"testing"

	"examloop-backend/internal/model"
)

func draftSession() *model.Session {
	return &model.Session{
		ID:            1,
		QuestionID:    10,
		SessionType:   model.SessionTypeFirst,
		Status:        model.SessionStatusDraft,
		ProgressState: model.NeutralProgressState(),
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	session := draftSession()
	session.UserAnswerDraft = "some draft text"
	session.ProgressState.LastEval = &model.EvalResult{Feedback: "ok", Score: 4}
	history := &model.SessionHistory{Session: *session}

	first := Project(session, history, nil)
	second := Project(session, history, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestProjectCanEditDraft(t *testing.T) {
	session := draftSession()
	if view := Project(session, nil, nil); !view.CanEditDraft {
		t.Fatal("fresh draft session should be editable")
	}

	running := draftSession()
	running.ProgressState.PhaseStatus = model.PhaseStatusRunning
	if view := Project(running, nil, nil); view.CanEditDraft {
		t.Fatal("running phase should block draft editing")
	}

	completed := draftSession()
	completed.Status = model.SessionStatusCompleted
	if view := Project(completed, nil, nil); view.CanEditDraft {
		t.Fatal("completed session should not be editable")
	}

	answerID := uint(5)
	bound := draftSession()
	bound.AnswerID = &answerID
	if view := Project(bound, nil, nil); view.CanEditDraft {
		t.Fatal("session with a bound answer should not be editable")
	}
}

func TestProjectReviewSourceAnswerID(t *testing.T) {
	session := draftSession()
	if view := Project(session, nil, nil); view.ReviewSourceAnswerID != nil {
		t.Fatalf("expected no source answer, got %d", *view.ReviewSourceAnswerID)
	}

	session.ProgressState.ReviewSourceAnswerID = 42
	if view := Project(session, nil, nil); view.ReviewSourceAnswerID == nil || *view.ReviewSourceAnswerID != 42 {
		t.Fatalf("expected source answer 42, got %v", view.ReviewSourceAnswerID)
	}

	// fallback to the bound answer when progress state has none
	answerID := uint(13)
	bound := draftSession()
	bound.AnswerID = &answerID
	if view := Project(bound, nil, nil); view.ReviewSourceAnswerID == nil || *view.ReviewSourceAnswerID != 13 {
		t.Fatalf("expected fallback to bound answer 13, got %v", view.ReviewSourceAnswerID)
	}
}

func TestProjectReviewComparison(t *testing.T) {
	session := draftSession()
	session.SessionType = model.SessionTypeReview
	session.UserAnswerDraft = "a b c d"
	source := &model.Answer{ID: 3, Text: "a b c"}

	view := Project(session, nil, source)
	if view.ReviewComparison == nil {
		t.Fatal("expected a comparison when the source answer is loaded")
	}

	want := ReviewComparison{
		SourceWords:  3,
		CurrentWords: 4,
		DiffWords:    1,
		SourceChars:  5,
		CurrentChars: 7,
		DiffChars:    2,
	}
	if *view.ReviewComparison != want {
		t.Fatalf("comparison mismatch: got %+v want %+v", *view.ReviewComparison, want)
	}

	// no source loaded, no comparison
	if view := Project(session, nil, nil); view.ReviewComparison != nil {
		t.Fatal("expected no comparison without a loaded source answer")
	}
}

func TestProjectNormalizesUnknownPhase(t *testing.T) {
	session := draftSession()
	session.ProgressState.Phase = "mystery"
	session.ProgressState.PhaseStatus = "busy"

	view := Project(session, nil, nil)
	if view.CurrentPhase != model.PhaseDraft {
		t.Fatalf("expected draft phase, got %q", view.CurrentPhase)
	}
	if view.PhaseStatus != model.PhaseStatusIdle {
		t.Fatalf("expected idle status, got %q", view.PhaseStatus)
	}
}

package service

import (
	"testing"

	"examloop-backend/internal/model"
	"examloop-backend/utilities"
)

func newSessionFixture(t *testing.T) (SessionService, *mockSessionRepo, *mockFlashcardRepo) {
	t.Helper()
	sessionRepo := newMockSessionRepo()
	questionRepo := newMockQuestionRepo(model.Question{ID: 10, Title: "Question title", Body: "body", Type: "essay"})
	flashcardRepo := newMockFlashcardRepo()
	svc := NewSessionService(sessionRepo, questionRepo, newMockTaskRepo(), flashcardRepo, nil)
	return svc, sessionRepo, flashcardRepo
}

func TestCreateSessionStartsNeutral(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	session, err := svc.CreateSession(10, "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.SessionType != model.SessionTypeFirst {
		t.Fatalf("expected default session type, got %q", session.SessionType)
	}
	if session.ProgressState.Phase != model.PhaseDraft || session.ProgressState.PhaseStatus != model.PhaseStatusIdle {
		t.Fatalf("expected neutral progress state, got %+v", session.ProgressState)
	}
}

func TestUpdateSessionRejectsDraftEditWhenCompleted(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusCompleted,
		ProgressState: model.NeutralProgressState(),
	})

	text := "new draft"
	if _, err := svc.UpdateSession(1, SessionUpdate{UserAnswerDraft: &text}); err == nil {
		t.Fatal("draft edits on a completed session should be rejected")
	}
}

func TestDeleteSessionRefusedWhenAnswerBound(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	answerID := uint(5)
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, AnswerID: &answerID,
		Status: model.SessionStatusDraft, ProgressState: model.NeutralProgressState(),
	})

	if err := svc.DeleteSession(1); err == nil {
		t.Fatal("deleting a session bound to an answer should be refused")
	}
}

func TestCreateReviewSessionSeedsDraft(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	group := &model.AnswerGroup{QuestionID: 10, Title: "G"}
	sessionRepo.CreateAnswerGroup(group)
	answer := &model.Answer{AnswerGroupID: group.ID, Title: "v1", Text: "prior answer text"}
	sessionRepo.CreateAnswer(answer)

	session, err := svc.CreateReviewSession(answer.ID)
	if err != nil {
		t.Fatalf("CreateReviewSession: %v", err)
	}
	if session.SessionType != model.SessionTypeReview {
		t.Fatalf("expected review session, got %q", session.SessionType)
	}
	if session.UserAnswerDraft != "prior answer text" {
		t.Fatalf("draft should be seeded from the source answer, got %q", session.UserAnswerDraft)
	}
	if session.ProgressState.ReviewSourceAnswerID != answer.ID {
		t.Fatalf("expected review source %d, got %d", answer.ID, session.ProgressState.ReviewSourceAnswerID)
	}
}

func TestFinalizeSessionNewGroup(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusDraft,
		UserAnswerDraft: "the draft", ProgressState: model.NeutralProgressState(),
	})

	session, err := svc.FinalizeSession(1, model.SessionFinalizePayload{
		AnswerTitle: "v1", AnswerText: "the draft",
		DialogueProfile: model.JSONMap{"register": "formal"},
	})
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	if session.AnswerID == nil {
		t.Fatal("finalize should bind an answer")
	}
	if session.ProgressState.Phase != model.PhaseLearning {
		t.Fatalf("expected learning phase, got %q", session.ProgressState.Phase)
	}
	// learning is still ahead, so the session itself stays open
	if session.Status != model.SessionStatusDraft {
		t.Fatalf("session should remain open until learning completes, got %q", session.Status)
	}

	answer, err := sessionRepo.GetAnswerByID(*session.AnswerID)
	if err != nil {
		t.Fatalf("answer not persisted: %v", err)
	}
	if answer.VersionIndex != 1 {
		t.Fatalf("first answer in a group should be version 1, got %d", answer.VersionIndex)
	}

	// a missing group title falls back to the question title
	groups, _ := sessionRepo.GetAnswerGroupsByQuestion(10)
	if len(groups) != 1 || groups[0].Title != "Question title" {
		t.Fatalf("expected a new group titled after the question, got %+v", groups)
	}
	if groups[0].DialogueProfile["register"] != "formal" {
		t.Fatalf("dialogue profile not stored on the new group: %+v", groups[0].DialogueProfile)
	}
}

func TestFinalizeSessionReuseIncrementsVersion(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	group := &model.AnswerGroup{QuestionID: 10, Title: "Existing"}
	sessionRepo.CreateAnswerGroup(group)
	sessionRepo.CreateAnswer(&model.Answer{AnswerGroupID: group.ID, VersionIndex: 2, Title: "v2"})

	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusDraft,
		ProgressState: model.NeutralProgressState(),
	})

	session, err := svc.FinalizeSession(1, model.SessionFinalizePayload{
		AnswerGroupID: &group.ID, AnswerTitle: "v3", AnswerText: "text",
	})
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	answer, _ := sessionRepo.GetAnswerByID(*session.AnswerID)
	if answer.VersionIndex != 3 {
		t.Fatalf("expected version 3, got %d", answer.VersionIndex)
	}
	if answer.AnswerGroupID != group.ID {
		t.Fatalf("expected reuse of group %d, got %d", group.ID, answer.AnswerGroupID)
	}
}

func TestFinalizeSessionBlockedWhileRunning(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	state := model.NeutralProgressState()
	state.PhaseStatus = model.PhaseStatusRunning
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusDraft, ProgressState: state,
	})

	_, err := svc.FinalizeSession(1, model.SessionFinalizePayload{AnswerTitle: "v1", AnswerText: "x"})
	if err == nil {
		t.Fatal("finalize should be rejected while a phase action runs")
	}
}

func TestFinalizePublishesStructureEvent(t *testing.T) {
	sessionRepo := newMockSessionRepo()
	questionRepo := newMockQuestionRepo(model.Question{ID: 10, Title: "Question title"})
	bus := utilities.NewEventBus()
	svc := NewSessionService(sessionRepo, questionRepo, newMockTaskRepo(), newMockFlashcardRepo(), bus)

	received := make(chan SessionFinalizedEvent, 1)
	bus.Subscribe(EventSessionFinalized, func(data interface{}) {
		if event, ok := data.(SessionFinalizedEvent); ok {
			received <- event
		}
	})

	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusDraft,
		ProgressState: model.NeutralProgressState(),
	})
	session, err := svc.FinalizeSession(1, model.SessionFinalizePayload{AnswerTitle: "v1", AnswerText: "x"})
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}

	event := <-received
	if event.SessionID != 1 || event.AnswerID != *session.AnswerID {
		t.Fatalf("unexpected event payload: %+v", event)
	}
}

func TestCompleteLearningGatedOnDueCards(t *testing.T) {
	svc, sessionRepo, flashcardRepo := newSessionFixture(t)
	answerID := uint(7)
	state := model.NeutralProgressState()
	state.Phase = model.PhaseLearning
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, AnswerID: &answerID,
		Status: model.SessionStatusDraft, ProgressState: state,
	})

	flashcardRepo.dueByAns[answerID] = []model.FlashcardProgress{{ID: 1, EntityType: "lexeme", EntityID: 3}}
	if _, err := svc.CompleteLearning(1); err == nil {
		t.Fatal("completion should be refused while cards are due")
	}

	flashcardRepo.dueByAns[answerID] = nil
	session, err := svc.CompleteLearning(1)
	if err != nil {
		t.Fatalf("CompleteLearning: %v", err)
	}
	if session.Status != model.SessionStatusCompleted {
		t.Fatalf("expected completed status, got %q", session.Status)
	}
	if session.ProgressState.Phase != model.PhaseCompleted {
		t.Fatalf("expected completed phase, got %q", session.ProgressState.Phase)
	}
	if session.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestCompleteLearningRequiresLearningPhase(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	sessionRepo.addSession(model.Session{
		ID: 1, QuestionID: 10, Status: model.SessionStatusDraft,
		ProgressState: model.NeutralProgressState(),
	})

	if _, err := svc.CompleteLearning(1); err == nil {
		t.Fatal("completion outside the learning phase should be refused")
	}
}

func TestDeleteAnswerRefusedWhenReferenced(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t)
	group := &model.AnswerGroup{QuestionID: 10, Title: "G"}
	sessionRepo.CreateAnswerGroup(group)
	answer := &model.Answer{AnswerGroupID: group.ID, Title: "v1"}
	sessionRepo.CreateAnswer(answer)
	sessionRepo.sessionRefs[answer.ID] = 1

	if err := svc.DeleteAnswer(answer.ID); err == nil {
		t.Fatal("deleting a referenced answer should be refused")
	}

	sessionRepo.sessionRefs[answer.ID] = 0
	if err := svc.DeleteAnswer(answer.ID); err != nil {
		t.Fatalf("DeleteAnswer: %v", err)
	}
}

package service

import (
	"testing"

	"examloop-backend/internal/model"
)

func newQueryFixture(t *testing.T) (TaskQueryService, *mockTaskRepo, *mockSessionRepo) {
	t.Helper()
	sessionRepo := newMockSessionRepo()
	questionRepo := newMockQuestionRepo(model.Question{ID: 10, Title: "Q", Body: "body"})
	taskRepo := newMockTaskRepo()
	tasks := NewTaskService(sessionRepo, questionRepo, taskRepo, newMockFlashcardRepo(), &mockLLM{})
	return NewTaskQueryService(taskRepo, tasks), taskRepo, sessionRepo
}

func TestRetryTaskProducesFreshRecord(t *testing.T) {
	svc, taskRepo, sessionRepo := newQueryFixture(t)
	seedDraftSession(sessionRepo, 1)

	sessionID := uint(1)
	failed := &model.Task{
		Type: model.TaskTypeEval, Status: model.TaskStatusFailed,
		SessionID: &sessionID, ErrorMessage: "model unavailable",
	}
	taskRepo.CreateTask(failed)

	retried, err := svc.RetryTask(failed.ID)
	if err != nil {
		t.Fatalf("RetryTask: %v", err)
	}
	if retried.ID == failed.ID {
		t.Fatal("retry should create a fresh task record")
	}
	if retried.Status != model.TaskStatusSucceeded {
		t.Fatalf("expected succeeded retry, got %q", retried.Status)
	}

	// the original record is left as it was
	original, _ := taskRepo.GetTaskByID(failed.ID)
	if original.Status != model.TaskStatusFailed {
		t.Fatalf("original task should stay failed, got %q", original.Status)
	}
}

func TestRetryTaskRejectsTerminalSuccess(t *testing.T) {
	svc, taskRepo, _ := newQueryFixture(t)
	sessionID := uint(1)
	done := &model.Task{Type: model.TaskTypeEval, Status: model.TaskStatusSucceeded, SessionID: &sessionID}
	taskRepo.CreateTask(done)

	if _, err := svc.RetryTask(done.ID); err == nil {
		t.Fatal("retrying a succeeded task should be rejected")
	}
}

func TestCancelTask(t *testing.T) {
	svc, taskRepo, _ := newQueryFixture(t)
	pending := &model.Task{Type: model.TaskTypeEval, Status: model.TaskStatusPending}
	taskRepo.CreateTask(pending)

	canceled, err := svc.CancelTask(pending.ID)
	if err != nil {
		t.Fatalf("CancelTask: %v", err)
	}
	if canceled.Status != model.TaskStatusCanceled {
		t.Fatalf("expected canceled status, got %q", canceled.Status)
	}

	if _, err := svc.CancelTask(pending.ID); err == nil {
		t.Fatal("canceling an already canceled task should be rejected")
	}
}

// Package workflow is the session workflow controller: a UI-framework-free
// core that drives one authoring session through its guided phase sequence
// (draft, evaluate, compose or compare, finalize into an answer group,
// guided vocabulary learning, completion) against the REST backend.
//
// The package holds no global state. The caller owns one Controller per
// backend and one SessionContext per active session, and every method takes
// both explicitly.
package workflow

import (
	"context"

	"examloop-backend/internal/model"
)

// SessionPatch is a partial session update. Nil fields are left untouched.
type SessionPatch struct {
	UserAnswerDraft *string              `json:"user_answer_draft,omitempty"`
	ProgressState   *model.ProgressState `json:"progress_state,omitempty"`
}

// API is the backend surface the workflow core consumes. HTTPClient is the
// production implementation; tests substitute their own.
type API interface {
	GetSession(ctx context.Context, sessionID uint) (*model.Session, error)
	UpdateSession(ctx context.Context, sessionID uint, patch SessionPatch) (*model.Session, error)
	GetSessionHistory(ctx context.Context, sessionID uint) (*model.SessionHistory, error)

	// RunTask triggers one backend task (eval, compose, compare,
	// gap-highlight, refine) and blocks until the returned record is
	// terminal. Progress state mutation happens server-side; callers must
	// re-fetch the session afterwards.
	RunTask(ctx context.Context, kind string, sessionID uint) (*model.Task, error)

	FinalizeSession(ctx context.Context, sessionID uint, payload model.SessionFinalizePayload) (*model.Session, error)
	CompleteLearning(ctx context.Context, sessionID uint) (*model.Session, error)

	ListGuidedFlashcards(ctx context.Context, answerID uint, limit int) ([]model.FlashcardStudyCard, error)
	ReviewFlashcard(ctx context.Context, cardID uint, score int) (*model.FlashcardProgress, error)

	ListAnswerGroupsByQuestion(ctx context.Context, questionID uint) ([]model.AnswerGroup, error)
	GetAnswer(ctx context.Context, answerID uint) (*model.Answer, error)
}

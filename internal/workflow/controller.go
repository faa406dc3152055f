package workflow

import (
	"context"
	"errors"

	"examloop-backend/internal/model"
)

// SessionContext carries the fetched state for one active session. The UI
// shell owns exactly one per open session and passes it into every
// Controller call; nothing here is global.
type SessionContext struct {
	SessionID    uint
	Session      *model.Session
	History      *model.SessionHistory
	SourceAnswer *model.Answer
	Learning     *LearningDriver
}

// Controller drives the guided session workflow against the backend API.
type Controller struct {
	api    API
	runner *Runner
}

func NewController(api API) *Controller {
	return &Controller{api: api, runner: NewRunner(api)}
}

// Load fetches a session and its history and builds the working context.
// The review source answer is loaded when one is referenced; a failure
// there is not fatal, the comparison panel just stays empty.
func (c *Controller) Load(ctx context.Context, sessionID uint) (*SessionContext, error) {
	session, err := c.api.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := c.api.GetSessionHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wctx := &SessionContext{SessionID: sessionID, Session: session, History: history}
	c.loadSourceAnswer(ctx, wctx)
	c.ensureLearningDriver(wctx)
	return wctx, nil
}

// Refresh re-fetches the session and history into the context.
func (c *Controller) Refresh(ctx context.Context, wctx *SessionContext) error {
	session, err := c.api.GetSession(ctx, wctx.SessionID)
	if err != nil {
		return err
	}
	history, err := c.api.GetSessionHistory(ctx, wctx.SessionID)
	if err != nil {
		return err
	}
	wctx.Session = session
	wctx.History = history
	c.loadSourceAnswer(ctx, wctx)
	c.ensureLearningDriver(wctx)
	return nil
}

func (c *Controller) loadSourceAnswer(ctx context.Context, wctx *SessionContext) {
	view := Project(wctx.Session, wctx.History, nil)
	if view.ReviewSourceAnswerID == nil {
		wctx.SourceAnswer = nil
		return
	}
	if wctx.SourceAnswer != nil && wctx.SourceAnswer.ID == *view.ReviewSourceAnswerID {
		return
	}
	if answer, err := c.api.GetAnswer(ctx, *view.ReviewSourceAnswerID); err == nil {
		wctx.SourceAnswer = answer
	}
}

func (c *Controller) ensureLearningDriver(wctx *SessionContext) {
	if wctx.Session.AnswerID == nil {
		wctx.Learning = nil
		return
	}
	if wctx.Learning == nil || wctx.Learning.answerID != *wctx.Session.AnswerID {
		wctx.Learning = NewLearningDriver(c.api, *wctx.Session.AnswerID)
	}
}

// View projects the current context into renderable state.
func (c *Controller) View(wctx *SessionContext) ViewState {
	return Project(wctx.Session, wctx.History, wctx.SourceAnswer)
}

// SaveDraft persists the draft text.
func (c *Controller) SaveDraft(ctx context.Context, wctx *SessionContext, text string) error {
	if err := Check(c.View(wctx), ActionSaveDraft); err != nil {
		return err
	}
	session, err := c.api.UpdateSession(ctx, wctx.SessionID, SessionPatch{UserAnswerDraft: &text})
	if err != nil {
		return err
	}
	wctx.Session = session
	return nil
}

// SaveReviewNote appends a note to the review history and sets it as the
// current note.
func (c *Controller) SaveReviewNote(ctx context.Context, wctx *SessionContext, note string) error {
	if err := Check(c.View(wctx), ActionSaveDraft); err != nil {
		return err
	}
	state := wctx.Session.ProgressState
	state.Normalize()
	state.ReviewNotes = note
	state.ReviewNotesHistory = append(state.ReviewNotesHistory, model.ReviewNote{Note: note})

	session, err := c.api.UpdateSession(ctx, wctx.SessionID, SessionPatch{ProgressState: &state})
	if err != nil {
		return err
	}
	wctx.Session = session
	return nil
}

// RequestEval runs the evaluation task.
func (c *Controller) RequestEval(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionRequestEval, model.TaskTypeEval)
}

// Compose runs the composition task.
func (c *Controller) Compose(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionCompose, model.TaskTypeCompose)
}

// Compare runs the answer-group comparison task.
func (c *Controller) Compare(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionCompare, model.TaskTypeCompare)
}

// HighlightGaps runs the gap-highlight task against the review source.
func (c *Controller) HighlightGaps(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionAuxTask, model.TaskTypeGapHighlight)
}

// Refine runs the draft refinement task.
func (c *Controller) Refine(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionAuxTask, model.TaskTypeRefine)
}

// Translate translates the current draft into both study languages.
func (c *Controller) Translate(ctx context.Context, wctx *SessionContext) (*model.Task, error) {
	return c.runGated(ctx, wctx, ActionAuxTask, model.TaskTypeTranslate)
}

func (c *Controller) runGated(ctx context.Context, wctx *SessionContext, action Action, kind string) (*model.Task, error) {
	if err := Check(c.View(wctx), action); err != nil {
		return nil, err
	}
	result := c.runner.Run(ctx, kind, wctx.SessionID)
	if result.Session != nil {
		wctx.Session = result.Session
	}
	if result.History != nil {
		wctx.History = result.History
	}
	return result.Task, result.Err
}

// FinalizeDefaults fetches the question's answer groups and resolves the
// default finalize target from the last compare decision.
func (c *Controller) FinalizeDefaults(ctx context.Context, wctx *SessionContext, questionTitle string) (FinalizeTarget, []model.AnswerGroup, error) {
	if err := Check(c.View(wctx), ActionOpenFinalize); err != nil {
		return FinalizeTarget{}, nil, err
	}
	groups, err := c.api.ListAnswerGroupsByQuestion(ctx, wctx.Session.QuestionID)
	if err != nil {
		return FinalizeTarget{}, nil, err
	}
	view := c.View(wctx)
	return ResolveFinalizeTarget(view.LastCompare, groups, questionTitle), groups, nil
}

// Finalize submits the finalize payload and refreshes the context. On
// success the session carries a bound answer and enters the learning phase.
func (c *Controller) Finalize(ctx context.Context, wctx *SessionContext, payload model.SessionFinalizePayload) error {
	if err := Check(c.View(wctx), ActionOpenFinalize); err != nil {
		return err
	}
	if payload.AnswerGroupID == nil && payload.GroupTitle == "" {
		return errors.New("finalize requires a group to reuse or a new group title")
	}
	session, err := c.api.FinalizeSession(ctx, wctx.SessionID, payload)
	if err != nil {
		return err
	}
	wctx.Session = session
	c.ensureLearningDriver(wctx)
	return nil
}

// CanCompleteLearning reports whether the completion gate is open.
func (c *Controller) CanCompleteLearning(wctx *SessionContext) bool {
	if wctx.Learning == nil {
		return false
	}
	return CanCompleteLearning(c.View(wctx), wctx.Learning.Loaded(), len(wctx.Learning.Due()))
}

// CompleteLearning marks the session completed once no due cards remain.
func (c *Controller) CompleteLearning(ctx context.Context, wctx *SessionContext) error {
	if err := Check(c.View(wctx), ActionCompleteLearning); err != nil {
		return err
	}
	if wctx.Learning == nil || !wctx.Learning.Loaded() {
		return errors.New("due cards have not been fetched yet")
	}
	if len(wctx.Learning.Due()) > 0 {
		return errors.New("due cards remain")
	}
	session, err := c.api.CompleteLearning(ctx, wctx.SessionID)
	if err != nil {
		return err
	}
	wctx.Session = session
	return nil
}

package workflow

import (
	"context"

	"examloop-backend/internal/model"
)

// RunResult is the outcome of one task run plus the refreshed records that
// reflect it. Task may be non-nil even when Err is set, since the backend
// returns failed task records alongside the error.
type RunResult struct {
	Task    *model.Task
	Session *model.Session
	History *model.SessionHistory
	Err     error
}

// Runner triggers backend tasks and re-fetches session state afterwards.
// The backend call blocks until the task is terminal, so there is no
// polling loop here.
type Runner struct {
	api API
}

func NewRunner(api API) *Runner {
	return &Runner{api: api}
}

// Run executes one task kind against a session. The session and history are
// re-fetched even when the task call fails, because the server may have
// persisted a failed phase status that the caller needs to observe. All
// state flows one way, from server to client.
func (r *Runner) Run(ctx context.Context, kind string, sessionID uint) RunResult {
	result := RunResult{}
	result.Task, result.Err = r.api.RunTask(ctx, kind, sessionID)

	if session, err := r.api.GetSession(ctx, sessionID); err == nil {
		result.Session = session
	} else if result.Err == nil {
		result.Err = err
	}
	if history, err := r.api.GetSessionHistory(ctx, sessionID); err == nil {
		result.History = history
	}
	return result
}

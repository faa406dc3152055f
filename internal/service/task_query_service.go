package service

import (
	"errors"
	"fmt"
	"time"

	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
)

// TaskQueryService backs the operator-facing task list: read access plus the
// retry/cancel affordances.
type TaskQueryService interface {
	ListTasks(filter repository.TaskFilter) ([]model.Task, error)
	GetTask(taskID uint) (*model.Task, error)
	RetryTask(taskID uint) (*model.Task, error)
	CancelTask(taskID uint) (*model.Task, error)
}

type taskQueryService struct {
	taskRepo repository.TaskRepository
	tasks    TaskService
}

func NewTaskQueryService(taskRepo repository.TaskRepository, tasks TaskService) TaskQueryService {
	return &taskQueryService{taskRepo: taskRepo, tasks: tasks}
}

func (s *taskQueryService) ListTasks(filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.ListTasks(filter)
}

func (s *taskQueryService) GetTask(taskID uint) (*model.Task, error) {
	return s.taskRepo.GetTaskByID(taskID)
}

// RetryTask re-triggers the operation of a failed or canceled task. The
// retry produces a fresh task record; the original is left untouched.
func (s *taskQueryService) RetryTask(taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskStatusFailed && task.Status != model.TaskStatusCanceled {
		return nil, errors.New("only failed or canceled tasks can be retried")
	}
	if task.SessionID == nil {
		return nil, errors.New("task has no session to retry against")
	}
	sessionID := *task.SessionID
	switch task.Type {
	case model.TaskTypeEval:
		return s.tasks.RunEvalTask(sessionID)
	case model.TaskTypeCompose:
		return s.tasks.RunComposeTask(sessionID)
	case model.TaskTypeCompare:
		return s.tasks.RunCompareTask(sessionID)
	case model.TaskTypeGapHighlight:
		return s.tasks.RunGapHighlightTask(sessionID)
	case model.TaskTypeRefine:
		return s.tasks.RunRefineTask(sessionID)
	case model.TaskTypeTranslate:
		return s.tasks.RunTranslateTask(sessionID)
	case model.TaskTypeStructure:
		if task.AnswerID == nil {
			return nil, errors.New("structure task has no answer reference")
		}
		return s.tasks.RunStructureTask(sessionID, *task.AnswerID)
	default:
		return nil, fmt.Errorf("task type %q cannot be retried", task.Type)
	}
}

func (s *taskQueryService) CancelTask(taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskStatusPending && task.Status != model.TaskStatusRunning {
		return nil, errors.New("only pending or running tasks can be canceled")
	}
	task.Status = model.TaskStatusCanceled
	task.UpdatedAt = time.Now().UTC()
	if err := s.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

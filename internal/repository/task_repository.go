package repository

import (
	"errors"

	"examloop-backend/internal/db"
	"examloop-backend/internal/model"
)

// TaskFilter narrows ListTasks. Zero values mean "no filter".
type TaskFilter struct {
	SessionID uint
	TaskType  string
	Status    string
	Limit     int
}

type TaskRepository interface {
	CreateTask(task *model.Task) error
	UpdateTask(task *model.Task) error
	GetTaskByID(taskID uint) (*model.Task, error)
	ListTasks(filter TaskFilter) ([]model.Task, error)
	GetTasksBySession(sessionID uint) ([]model.Task, error)
}

type taskRepository struct{}

func NewTaskRepository() TaskRepository {
	return &taskRepository{}
}

func (r *taskRepository) CreateTask(task *model.Task) error {
	return db.GetDB().Create(task).Error
}

func (r *taskRepository) UpdateTask(task *model.Task) error {
	return db.GetDB().Save(task).Error
}

func (r *taskRepository) GetTaskByID(taskID uint) (*model.Task, error) {
	var task model.Task
	err := db.GetDB().Where("id = ?", taskID).First(&task).Error
	if err != nil {
		return nil, errors.New("task not found")
	}
	return &task, nil
}

func (r *taskRepository) ListTasks(filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	query := db.GetDB().Order("created_at desc")
	if filter.SessionID > 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.TaskType != "" {
		query = query.Where("type = ?", filter.TaskType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) GetTasksBySession(sessionID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := db.GetDB().Where("session_id = ?", sessionID).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"examloop-backend/internal/repository"
	"examloop-backend/internal/service"
)

type TaskController struct {
	TaskQueryService service.TaskQueryService
}

func NewTaskController(taskQueryService service.TaskQueryService) *TaskController {
	return &TaskController{TaskQueryService: taskQueryService}
}

// ListTasks handles GET /tasks
func (tc *TaskController) ListTasks(c *gin.Context) {
	var filter repository.TaskFilter
	if raw := c.Query("session_id"); raw != "" {
		sessionID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
			return
		}
		filter.SessionID = uint(sessionID)
	}
	filter.TaskType = c.Query("type")
	filter.Status = c.Query("status")
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	tasks, err := tc.TaskQueryService.ListTasks(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTask handles GET /tasks/:id
func (tc *TaskController) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := tc.TaskQueryService.GetTask(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// RetryTask handles POST /tasks/:id/retry
func (tc *TaskController) RetryTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := tc.TaskQueryService.RetryTask(taskID)
	if err != nil {
		if task != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "task": task})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// CancelTask handles POST /tasks/:id/cancel
func (tc *TaskController) CancelTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := tc.TaskQueryService.CancelTask(taskID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

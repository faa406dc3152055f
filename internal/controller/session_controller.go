package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"examloop-backend/internal/model"
	"examloop-backend/internal/service"
)

type SessionController struct {
	SessionService service.SessionService
	TaskService    service.TaskService
	ReportService  service.ReportService
}

func NewSessionController(
	sessionService service.SessionService,
	taskService service.TaskService,
	reportService service.ReportService,
) *SessionController {
	return &SessionController{
		SessionService: sessionService,
		TaskService:    taskService,
		ReportService:  reportService,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// GetSessions handles GET /sessions
func (sc *SessionController) GetSessions(c *gin.Context) {
	sessions, err := sc.SessionService.GetSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSession handles POST /sessions
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req struct {
		QuestionID  uint   `json:"question_id" binding:"required"`
		SessionType string `json:"session_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := sc.SessionService.CreateSession(req.QuestionID, req.SessionType)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /sessions/:id
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := sc.SessionService.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles PUT /sessions/:id
func (sc *SessionController) UpdateSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var update service.SessionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := sc.SessionService.UpdateSession(sessionID, update)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /sessions/:id
func (sc *SessionController) DeleteSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.SessionService.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// RunTask handles POST /sessions/:id/tasks/:kind
func (sc *SessionController) RunTask(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var task *model.Task
	var err error
	switch c.Param("kind") {
	case model.TaskTypeEval:
		task, err = sc.TaskService.RunEvalTask(sessionID)
	case model.TaskTypeCompose:
		task, err = sc.TaskService.RunComposeTask(sessionID)
	case model.TaskTypeCompare:
		task, err = sc.TaskService.RunCompareTask(sessionID)
	case model.TaskTypeGapHighlight:
		task, err = sc.TaskService.RunGapHighlightTask(sessionID)
	case model.TaskTypeRefine:
		task, err = sc.TaskService.RunRefineTask(sessionID)
	case model.TaskTypeTranslate:
		task, err = sc.TaskService.RunTranslateTask(sessionID)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown task kind"})
		return
	}
	if err != nil {
		// A task record may still exist when the model call itself failed.
		if task != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "task": task})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// FinalizeSession handles POST /sessions/:id/finalize
func (sc *SessionController) FinalizeSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload model.SessionFinalizePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := sc.SessionService.FinalizeSession(sessionID, payload)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteLearning handles POST /sessions/:id/complete-learning
func (sc *SessionController) CompleteLearning(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := sc.SessionService.CompleteLearning(sessionID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionHistory handles GET /sessions/:id/history
func (sc *SessionController) GetSessionHistory(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := sc.SessionService.GetSessionHistory(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

// CreateAnswerGroup handles POST /answer-groups
func (sc *SessionController) CreateAnswerGroup(c *gin.Context) {
	var group model.AnswerGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := sc.SessionService.CreateAnswerGroup(&group); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GetAnswerGroup handles GET /answer-groups/:id
func (sc *SessionController) GetAnswerGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	group, err := sc.SessionService.GetAnswerGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, group)
}

// ListAnswerGroupsByQuestion handles GET /answer-groups/by-question/:questionId
func (sc *SessionController) ListAnswerGroupsByQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId")
	if !ok {
		return
	}
	groups, err := sc.SessionService.ListAnswerGroupsByQuestion(questionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// DeleteAnswerGroup handles DELETE /answer-groups/:id
func (sc *SessionController) DeleteAnswerGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.SessionService.DeleteAnswerGroup(groupID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadAnswerGroupReport handles GET /answer-groups/:id/report
func (sc *SessionController) DownloadAnswerGroupReport(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	content, filename, err := sc.ReportService.BuildAnswerGroupReport(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", content)
}

// GetAnswer handles GET /answers/:id
func (sc *SessionController) GetAnswer(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	answer, err := sc.SessionService.GetAnswer(answerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer handles DELETE /answers/:id
func (sc *SessionController) DeleteAnswer(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.SessionService.DeleteAnswer(answerID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateReviewSession handles POST /answers/:id/sessions
func (sc *SessionController) CreateReviewSession(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := sc.SessionService.CreateReviewSession(answerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"examloop-backend/internal/model"
	"examloop-backend/internal/service"
)

type QuestionController struct {
	QuestionService service.QuestionService
}

func NewQuestionController(questionService service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// CreateQuestion handles POST /questions
func (qc *QuestionController) CreateQuestion(c *gin.Context) {
	var question model.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := qc.QuestionService.CreateQuestion(&question); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, question)
}

// GetQuestions handles GET /questions
func (qc *QuestionController) GetQuestions(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = parsed
	}
	questions, err := qc.QuestionService.GetQuestions(c.Query("type"), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion handles GET /questions/:id
func (qc *QuestionController) GetQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	question, err := qc.QuestionService.GetQuestionByID(questionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, question)
}

// UpdateQuestion handles PUT /questions/:id
func (qc *QuestionController) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var question model.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	question.ID = questionID
	if err := qc.QuestionService.UpdateQuestion(&question); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion handles DELETE /questions/:id
func (qc *QuestionController) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := qc.QuestionService.DeleteQuestion(questionID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"examloop-backend/internal/service"
)

type FlashcardController struct {
	FlashcardService service.FlashcardService
}

func NewFlashcardController(flashcardService service.FlashcardService) *FlashcardController {
	return &FlashcardController{FlashcardService: flashcardService}
}

// ListFlashcards handles GET /flashcards
//
// Plain mode lists due cards by entity type. Guided mode scopes the due
// queue to one answer so the learning phase only surfaces its own cards.
func (fc *FlashcardController) ListFlashcards(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	if c.Query("mode") == "guided" {
		raw := c.Query("answer_id")
		answerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guided mode requires answer_id"})
			return
		}
		cards, err := fc.FlashcardService.ListGuided(uint(answerID), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cards)
		return
	}

	cards, err := fc.FlashcardService.ListDue(c.Query("entity_type"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// ReviewFlashcard handles POST /flashcards/:id/review
func (fc *FlashcardController) ReviewFlashcard(c *gin.Context) {
	cardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	// score may arrive as a query param or a JSON body
	var score int
	if raw := c.Query("score"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid score"})
			return
		}
		score = parsed
	} else {
		var req struct {
			Score *int `json:"score" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
		score = *req.Score
	}
	card, err := fc.FlashcardService.RecordReview(cardID, score)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

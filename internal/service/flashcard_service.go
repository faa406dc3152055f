package service

import (
	"time"

	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
)

// Interval growth caps at two months.
const maxIntervalDays = 60

type FlashcardService interface {
	ListDue(entityType string, limit int) ([]model.FlashcardStudyCard, error)
	ListGuided(answerID uint, limit int) ([]model.FlashcardStudyCard, error)
	RecordReview(cardID uint, score int) (*model.FlashcardProgress, error)
}

type flashcardService struct {
	flashcardRepo repository.FlashcardRepository
}

func NewFlashcardService(flashcardRepo repository.FlashcardRepository) FlashcardService {
	return &flashcardService{flashcardRepo: flashcardRepo}
}

func (s *flashcardService) ListDue(entityType string, limit int) ([]model.FlashcardStudyCard, error) {
	cards, err := s.flashcardRepo.ListDue(entityType, limit)
	if err != nil {
		return nil, err
	}
	return s.attachPayloads(cards)
}

// ListGuided returns due cards scoped to one answer's structure breakdown,
// for the post-finalize learning phase.
func (s *flashcardService) ListGuided(answerID uint, limit int) ([]model.FlashcardStudyCard, error) {
	cards, err := s.flashcardRepo.ListDueForAnswer(answerID, limit)
	if err != nil {
		return nil, err
	}
	return s.attachPayloads(cards)
}

func (s *flashcardService) attachPayloads(cards []model.FlashcardProgress) ([]model.FlashcardStudyCard, error) {
	studyCards := make([]model.FlashcardStudyCard, 0, len(cards))
	for _, card := range cards {
		studyCard := model.FlashcardStudyCard{Card: card}
		switch card.EntityType {
		case "sentence":
			if sentence, err := s.flashcardRepo.GetSentenceByID(card.EntityID); err == nil {
				studyCard.Sentence = sentence
			}
		case "lexeme":
			if lexeme, err := s.flashcardRepo.GetLexemeByID(card.EntityID); err == nil {
				studyCard.Lexeme = lexeme
			}
		}
		studyCards = append(studyCards, studyCard)
	}
	return studyCards, nil
}

// RecordReview applies the scheduling rule: a passing score (>= 3) doubles
// the interval and extends the streak, anything lower resets both.
func (s *flashcardService) RecordReview(cardID uint, score int) (*model.FlashcardProgress, error) {
	card, err := s.flashcardRepo.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}
	card.LastScore = &score
	if score >= 3 {
		card.Streak++
		card.IntervalDays *= 2
		if card.IntervalDays > maxIntervalDays {
			card.IntervalDays = maxIntervalDays
		}
	} else {
		card.Streak = 0
		card.IntervalDays = 1
	}
	now := time.Now().UTC()
	card.DueAt = now.Add(time.Duration(card.IntervalDays) * 24 * time.Hour)
	card.UpdatedAt = now
	if err := s.flashcardRepo.UpdateCard(card); err != nil {
		return nil, err
	}
	return card, nil
}

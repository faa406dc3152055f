package repository

import (
	"errors"
	"time"

	"examloop-backend/internal/db"
	"examloop-backend/internal/model"
)

type FlashcardRepository interface {
	GetByEntity(entityType string, entityID uint) (*model.FlashcardProgress, error)
	CreateCard(card *model.FlashcardProgress) error
	UpdateCard(card *model.FlashcardProgress) error
	GetCardByID(cardID uint) (*model.FlashcardProgress, error)
	ListDue(entityType string, limit int) ([]model.FlashcardProgress, error)
	ListDueForAnswer(answerID uint, limit int) ([]model.FlashcardProgress, error)
	GetSentenceByID(sentenceID uint) (*model.Sentence, error)
	GetLexemeByID(lexemeID uint) (*model.Lexeme, error)

	CreateParagraph(paragraph *model.Paragraph) error
	CreateSentence(sentence *model.Sentence) error
	CreateLexeme(lexeme *model.Lexeme) error
}

type flashcardRepository struct{}

func NewFlashcardRepository() FlashcardRepository {
	return &flashcardRepository{}
}

func (r *flashcardRepository) GetByEntity(entityType string, entityID uint) (*model.FlashcardProgress, error) {
	var card model.FlashcardProgress
	err := db.GetDB().Where("entity_type = ? AND entity_id = ?", entityType, entityID).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *flashcardRepository) CreateCard(card *model.FlashcardProgress) error {
	return db.GetDB().Create(card).Error
}

func (r *flashcardRepository) UpdateCard(card *model.FlashcardProgress) error {
	return db.GetDB().Save(card).Error
}

func (r *flashcardRepository) GetCardByID(cardID uint) (*model.FlashcardProgress, error) {
	var card model.FlashcardProgress
	err := db.GetDB().Where("id = ?", cardID).First(&card).Error
	if err != nil {
		return nil, errors.New("flashcard not found")
	}
	return &card, nil
}

func (r *flashcardRepository) ListDue(entityType string, limit int) ([]model.FlashcardProgress, error) {
	var cards []model.FlashcardProgress
	query := db.GetDB().Where("due_at <= ?", time.Now().UTC()).Order("due_at asc")
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&cards).Error
	return cards, err
}

// ListDueForAnswer returns due cards whose sentence or lexeme belongs to the
// given answer's structure breakdown.
func (r *flashcardRepository) ListDueForAnswer(answerID uint, limit int) ([]model.FlashcardProgress, error) {
	var cards []model.FlashcardProgress
	query := db.GetDB().
		Where("due_at <= ?", time.Now().UTC()).
		Where(`(entity_type = 'sentence' AND entity_id IN (SELECT id FROM sentences WHERE answer_id = ?))
			OR (entity_type = 'lexeme' AND entity_id IN (SELECT id FROM lexemes WHERE answer_id = ?))`,
			answerID, answerID).
		Order("due_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&cards).Error
	return cards, err
}

func (r *flashcardRepository) GetSentenceByID(sentenceID uint) (*model.Sentence, error) {
	var sentence model.Sentence
	err := db.GetDB().Where("id = ?", sentenceID).First(&sentence).Error
	if err != nil {
		return nil, err
	}
	return &sentence, nil
}

func (r *flashcardRepository) GetLexemeByID(lexemeID uint) (*model.Lexeme, error) {
	var lexeme model.Lexeme
	err := db.GetDB().Where("id = ?", lexemeID).First(&lexeme).Error
	if err != nil {
		return nil, err
	}
	return &lexeme, nil
}

func (r *flashcardRepository) CreateParagraph(paragraph *model.Paragraph) error {
	return db.GetDB().Create(paragraph).Error
}

func (r *flashcardRepository) CreateSentence(sentence *model.Sentence) error {
	return db.GetDB().Create(sentence).Error
}

func (r *flashcardRepository) CreateLexeme(lexeme *model.Lexeme) error {
	return db.GetDB().Create(lexeme).Error
}

package repository

import (
	"errors"

	"examloop-backend/internal/db"
	"examloop-backend/internal/model"
)

type QuestionRepository interface {
	CreateQuestion(question *model.Question) error
	GetQuestions(questionType string, year int) ([]model.Question, error)
	GetQuestionByID(questionID uint) (*model.Question, error)
	UpdateQuestion(question *model.Question) error
	DeleteQuestion(questionID uint) error
}

type questionRepository struct{}

func NewQuestionRepository() QuestionRepository {
	return &questionRepository{}
}

func (r *questionRepository) CreateQuestion(question *model.Question) error {
	return db.GetDB().Create(question).Error
}

func (r *questionRepository) GetQuestions(questionType string, year int) ([]model.Question, error) {
	var questions []model.Question
	query := db.GetDB().Order("year desc, month desc")
	if questionType != "" {
		query = query.Where("type = ?", questionType)
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	err := query.Find(&questions).Error
	return questions, err
}

func (r *questionRepository) GetQuestionByID(questionID uint) (*model.Question, error) {
	var question model.Question
	err := db.GetDB().Where("id = ?", questionID).First(&question).Error
	if err != nil {
		return nil, errors.New("question not found")
	}
	return &question, nil
}

func (r *questionRepository) UpdateQuestion(question *model.Question) error {
	return db.GetDB().Save(question).Error
}

func (r *questionRepository) DeleteQuestion(questionID uint) error {
	return db.GetDB().Delete(&model.Question{}, questionID).Error
}

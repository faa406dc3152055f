package service

import (
	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
)

type QuestionService interface {
	CreateQuestion(question *model.Question) error
	GetQuestions(questionType string, year int) ([]model.Question, error)
	GetQuestionByID(questionID uint) (*model.Question, error)
	UpdateQuestion(question *model.Question) error
	DeleteQuestion(questionID uint) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
}

func NewQuestionService(questionRepo repository.QuestionRepository) QuestionService {
	return &questionService{questionRepo: questionRepo}
}

func (s *questionService) CreateQuestion(question *model.Question) error {
	return s.questionRepo.CreateQuestion(question)
}

func (s *questionService) GetQuestions(questionType string, year int) ([]model.Question, error) {
	return s.questionRepo.GetQuestions(questionType, year)
}

func (s *questionService) GetQuestionByID(questionID uint) (*model.Question, error) {
	return s.questionRepo.GetQuestionByID(questionID)
}

func (s *questionService) UpdateQuestion(question *model.Question) error {
	return s.questionRepo.UpdateQuestion(question)
}

func (s *questionService) DeleteQuestion(questionID uint) error {
	return s.questionRepo.DeleteQuestion(questionID)
}

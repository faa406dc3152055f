package repository

import (
	"errors"

	"examloop-backend/internal/db"
	"examloop-backend/internal/model"
)

type SessionRepository interface {
	CreateSession(session *model.Session) error
	GetSessions() ([]model.Session, error)
	GetSessionByID(sessionID uint) (*model.Session, error)
	UpdateSession(session *model.Session) error
	DeleteSession(sessionID uint) error

	CreateAnswerGroup(group *model.AnswerGroup) error
	GetAnswerGroupByID(groupID uint) (*model.AnswerGroup, error)
	GetAnswerGroupsByQuestion(questionID uint) ([]model.AnswerGroup, error)
	DeleteAnswerGroup(groupID uint) error

	CreateAnswer(answer *model.Answer) error
	GetAnswerByID(answerID uint) (*model.Answer, error)
	DeleteAnswer(answerID uint) error
	NextVersionIndex(groupID uint) (int, error)
	CountSessionsByAnswer(answerID uint) (int64, error)

	CreateConversation(conversation *model.LLMConversation) error
	GetConversationsBySession(sessionID uint, taskIDs []uint) ([]model.LLMConversation, error)
}

type sessionRepository struct{}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) CreateSession(session *model.Session) error {
	return db.GetDB().Create(session).Error
}

func (r *sessionRepository) GetSessions() ([]model.Session, error) {
	var sessions []model.Session
	err := db.GetDB().Order("started_at desc").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) GetSessionByID(sessionID uint) (*model.Session, error) {
	var session model.Session
	err := db.GetDB().Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, errors.New("session not found")
	}
	return &session, nil
}

func (r *sessionRepository) UpdateSession(session *model.Session) error {
	return db.GetDB().Save(session).Error
}

func (r *sessionRepository) DeleteSession(sessionID uint) error {
	return db.GetDB().Delete(&model.Session{}, sessionID).Error
}

func (r *sessionRepository) CreateAnswerGroup(group *model.AnswerGroup) error {
	return db.GetDB().Create(group).Error
}

func (r *sessionRepository) GetAnswerGroupByID(groupID uint) (*model.AnswerGroup, error) {
	var group model.AnswerGroup
	err := db.GetDB().Preload("Answers").Where("id = ?", groupID).First(&group).Error
	if err != nil {
		return nil, errors.New("answer group not found")
	}
	return &group, nil
}

func (r *sessionRepository) GetAnswerGroupsByQuestion(questionID uint) ([]model.AnswerGroup, error) {
	var groups []model.AnswerGroup
	err := db.GetDB().Preload("Answers").
		Where("question_id = ?", questionID).
		Order("created_at asc").
		Find(&groups).Error
	return groups, err
}

func (r *sessionRepository) DeleteAnswerGroup(groupID uint) error {
	return db.GetDB().Delete(&model.AnswerGroup{}, groupID).Error
}

func (r *sessionRepository) CreateAnswer(answer *model.Answer) error {
	return db.GetDB().Create(answer).Error
}

func (r *sessionRepository) GetAnswerByID(answerID uint) (*model.Answer, error) {
	var answer model.Answer
	err := db.GetDB().Where("id = ?", answerID).First(&answer).Error
	if err != nil {
		return nil, errors.New("answer not found")
	}
	return &answer, nil
}

func (r *sessionRepository) DeleteAnswer(answerID uint) error {
	return db.GetDB().Delete(&model.Answer{}, answerID).Error
}

func (r *sessionRepository) NextVersionIndex(groupID uint) (int, error) {
	var maxIndex int
	err := db.GetDB().Model(&model.Answer{}).
		Where("answer_group_id = ?", groupID).
		Select("COALESCE(MAX(version_index), 0)").
		Scan(&maxIndex).Error
	if err != nil {
		return 0, err
	}
	return maxIndex + 1, nil
}

func (r *sessionRepository) CountSessionsByAnswer(answerID uint) (int64, error) {
	var count int64
	err := db.GetDB().Model(&model.Session{}).Where("answer_id = ?", answerID).Count(&count).Error
	return count, err
}

func (r *sessionRepository) CreateConversation(conversation *model.LLMConversation) error {
	return db.GetDB().Create(conversation).Error
}

func (r *sessionRepository) GetConversationsBySession(sessionID uint, taskIDs []uint) ([]model.LLMConversation, error) {
	var conversations []model.LLMConversation
	query := db.GetDB().Order("created_at desc")
	if len(taskIDs) > 0 {
		query = query.Where("session_id = ? OR task_id IN ?", sessionID, taskIDs)
	} else {
		query = query.Where("session_id = ?", sessionID)
	}
	err := query.Find(&conversations).Error
	return conversations, err
}

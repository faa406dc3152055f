package service

import (
	"errors"
	"fmt"
	"time"

	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
	"examloop-backend/utilities"
)

// EventSessionFinalized is published after finalize binds an answer; the
// structure pipeline listens for it.
const EventSessionFinalized = "session_finalized"

// SessionFinalizedEvent is the payload of EventSessionFinalized.
type SessionFinalizedEvent struct {
	SessionID uint
	AnswerID  uint
}

// SessionUpdate is a partial session mutation (PUT /sessions/:id).
type SessionUpdate struct {
	UserAnswerDraft *string              `json:"user_answer_draft,omitempty"`
	ProgressState   *model.ProgressState `json:"progress_state,omitempty"`
}

type SessionService interface {
	GetSessions() ([]model.Session, error)
	CreateSession(questionID uint, sessionType string) (*model.Session, error)
	GetSession(sessionID uint) (*model.Session, error)
	UpdateSession(sessionID uint, update SessionUpdate) (*model.Session, error)
	DeleteSession(sessionID uint) error
	CreateReviewSession(answerID uint) (*model.Session, error)
	FinalizeSession(sessionID uint, payload model.SessionFinalizePayload) (*model.Session, error)
	CompleteLearning(sessionID uint) (*model.Session, error)
	GetSessionHistory(sessionID uint) (*model.SessionHistory, error)

	CreateAnswerGroup(group *model.AnswerGroup) error
	GetAnswerGroup(groupID uint) (*model.AnswerGroup, error)
	ListAnswerGroupsByQuestion(questionID uint) ([]model.AnswerGroup, error)
	DeleteAnswerGroup(groupID uint) error
	GetAnswer(answerID uint) (*model.Answer, error)
	DeleteAnswer(answerID uint) error
}

type sessionService struct {
	sessionRepo   repository.SessionRepository
	questionRepo  repository.QuestionRepository
	taskRepo      repository.TaskRepository
	flashcardRepo repository.FlashcardRepository
	eventBus      *utilities.EventBus
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	taskRepo repository.TaskRepository,
	flashcardRepo repository.FlashcardRepository,
	eventBus *utilities.EventBus,
) SessionService {
	return &sessionService{
		sessionRepo:   sessionRepo,
		questionRepo:  questionRepo,
		taskRepo:      taskRepo,
		flashcardRepo: flashcardRepo,
		eventBus:      eventBus,
	}
}

func (s *sessionService) GetSessions() ([]model.Session, error) {
	return s.sessionRepo.GetSessions()
}

func (s *sessionService) CreateSession(questionID uint, sessionType string) (*model.Session, error) {
	if _, err := s.questionRepo.GetQuestionByID(questionID); err != nil {
		return nil, err
	}
	if sessionType == "" {
		sessionType = model.SessionTypeFirst
	}
	session := &model.Session{
		QuestionID:    questionID,
		SessionType:   sessionType,
		Status:        model.SessionStatusDraft,
		ProgressState: model.NeutralProgressState(),
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) GetSession(sessionID uint) (*model.Session, error) {
	return s.sessionRepo.GetSessionByID(sessionID)
}

func (s *sessionService) UpdateSession(sessionID uint, update SessionUpdate) (*model.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if update.UserAnswerDraft != nil {
		if session.Status == model.SessionStatusCompleted {
			return nil, errors.New("session is completed; draft can no longer be edited")
		}
		session.UserAnswerDraft = *update.UserAnswerDraft
	}
	if update.ProgressState != nil {
		state := *update.ProgressState
		state.Normalize()
		session.ProgressState = state
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) DeleteSession(sessionID uint) error {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session.AnswerID != nil {
		return errors.New("session is referenced by an answer and cannot be deleted")
	}
	return s.sessionRepo.DeleteSession(sessionID)
}

// CreateReviewSession starts a review session seeded with an existing
// answer's text.
func (s *sessionService) CreateReviewSession(answerID uint) (*model.Session, error) {
	answer, err := s.sessionRepo.GetAnswerByID(answerID)
	if err != nil {
		return nil, err
	}
	group, err := s.sessionRepo.GetAnswerGroupByID(answer.AnswerGroupID)
	if err != nil {
		return nil, err
	}
	state := model.NeutralProgressState()
	state.ReviewSourceAnswerID = answer.ID
	session := &model.Session{
		QuestionID:      group.QuestionID,
		AnswerID:        &answer.ID,
		SessionType:     model.SessionTypeReview,
		Status:          model.SessionStatusDraft,
		UserAnswerDraft: answer.Text,
		ProgressState:   state,
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// FinalizeSession turns the draft into an answer version, creating or
// reusing an answer group, and moves the workflow into the learning phase.
func (s *sessionService) FinalizeSession(sessionID uint, payload model.SessionFinalizePayload) (*model.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, errors.New("session is already completed")
	}
	if session.ProgressState.PhaseStatus == model.PhaseStatusRunning {
		return nil, errors.New("another phase action is still running")
	}
	question, err := s.questionRepo.GetQuestionByID(session.QuestionID)
	if err != nil {
		return nil, err
	}

	var group *model.AnswerGroup
	if payload.AnswerGroupID != nil {
		group, err = s.sessionRepo.GetAnswerGroupByID(*payload.AnswerGroupID)
		if err != nil {
			return nil, err
		}
	} else {
		title := payload.GroupTitle
		if title == "" {
			title = question.Title
		}
		group = &model.AnswerGroup{
			QuestionID:      question.ID,
			Title:           title,
			Slug:            fmt.Sprintf("%s-%d", question.Type, question.ID),
			Descriptor:      payload.GroupDescriptor,
			DialogueProfile: payload.DialogueProfile,
		}
		if err := s.sessionRepo.CreateAnswerGroup(group); err != nil {
			return nil, err
		}
	}

	versionIndex, err := s.sessionRepo.NextVersionIndex(group.ID)
	if err != nil {
		return nil, err
	}
	answer := &model.Answer{
		AnswerGroupID: group.ID,
		VersionIndex:  versionIndex,
		Status:        "active",
		Title:         payload.AnswerTitle,
		Text:          payload.AnswerText,
	}
	if err := s.sessionRepo.CreateAnswer(answer); err != nil {
		return nil, err
	}

	session.AnswerID = &answer.ID
	session.ProgressState.Phase = model.PhaseLearning
	session.ProgressState.PhaseStatus = model.PhaseStatusIdle
	session.ProgressState.PhaseError = ""
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.UpdateSession(session); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(EventSessionFinalized, SessionFinalizedEvent{
			SessionID: session.ID,
			AnswerID:  answer.ID,
		})
	}
	return session, nil
}

// CompleteLearning closes the guided learning phase. It is refused while
// guided flashcards scoped to the session's answer are still due.
func (s *sessionService) CompleteLearning(sessionID uint) (*model.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, errors.New("session is already completed")
	}
	if session.ProgressState.Phase != model.PhaseLearning {
		return nil, errors.New("session is not in the learning phase")
	}
	if session.ProgressState.PhaseStatus == model.PhaseStatusRunning {
		return nil, errors.New("another phase action is still running")
	}
	if session.AnswerID != nil {
		due, err := s.flashcardRepo.ListDueForAnswer(*session.AnswerID, 1)
		if err != nil {
			return nil, err
		}
		if len(due) > 0 {
			return nil, errors.New("due flashcards remain; finish the guided review first")
		}
	}
	now := time.Now().UTC()
	session.ProgressState.Phase = model.PhaseCompleted
	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessionRepo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) GetSessionHistory(sessionID uint) (*model.SessionHistory, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.GetTasksBySession(sessionID)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	conversations, err := s.sessionRepo.GetConversationsBySession(sessionID, taskIDs)
	if err != nil {
		return nil, err
	}
	return &model.SessionHistory{
		Session:       *session,
		Tasks:         tasks,
		Conversations: conversations,
	}, nil
}

func (s *sessionService) CreateAnswerGroup(group *model.AnswerGroup) error {
	if _, err := s.questionRepo.GetQuestionByID(group.QuestionID); err != nil {
		return err
	}
	return s.sessionRepo.CreateAnswerGroup(group)
}

func (s *sessionService) GetAnswerGroup(groupID uint) (*model.AnswerGroup, error) {
	return s.sessionRepo.GetAnswerGroupByID(groupID)
}

func (s *sessionService) ListAnswerGroupsByQuestion(questionID uint) ([]model.AnswerGroup, error) {
	if _, err := s.questionRepo.GetQuestionByID(questionID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetAnswerGroupsByQuestion(questionID)
}

func (s *sessionService) DeleteAnswerGroup(groupID uint) error {
	return s.sessionRepo.DeleteAnswerGroup(groupID)
}

func (s *sessionService) GetAnswer(answerID uint) (*model.Answer, error) {
	return s.sessionRepo.GetAnswerByID(answerID)
}

func (s *sessionService) DeleteAnswer(answerID uint) error {
	count, err := s.sessionRepo.CountSessionsByAnswer(answerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("answer is referenced by sessions and cannot be deleted")
	}
	return s.sessionRepo.DeleteAnswer(answerID)
}

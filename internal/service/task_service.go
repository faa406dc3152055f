package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"examloop-backend/internal/llm"
	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
	"examloop-backend/utilities"
)

// TaskService runs the LLM-backed session operations. Each run is
// synchronous: the task record reaches a terminal status before the call
// returns, and the session's progress state is updated alongside it.
type TaskService interface {
	RunEvalTask(sessionID uint) (*model.Task, error)
	RunComposeTask(sessionID uint) (*model.Task, error)
	RunCompareTask(sessionID uint) (*model.Task, error)
	RunGapHighlightTask(sessionID uint) (*model.Task, error)
	RunRefineTask(sessionID uint) (*model.Task, error)
	RunTranslateTask(sessionID uint) (*model.Task, error)
	RunStructureTask(sessionID, answerID uint) (*model.Task, error)
}

type taskService struct {
	sessionRepo   repository.SessionRepository
	questionRepo  repository.QuestionRepository
	taskRepo      repository.TaskRepository
	flashcardRepo repository.FlashcardRepository
	llmClient     llm.Client
}

func NewTaskService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	taskRepo repository.TaskRepository,
	flashcardRepo repository.FlashcardRepository,
	llmClient llm.Client,
) TaskService {
	return &taskService{
		sessionRepo:   sessionRepo,
		questionRepo:  questionRepo,
		taskRepo:      taskRepo,
		flashcardRepo: flashcardRepo,
		llmClient:     llmClient,
	}
}

// taskRun is one phase-advancing LLM operation. invoke returns the result
// summary to store on the task plus a mutation applied to the session's
// progress state on success.
type taskRun struct {
	taskType string
	invoke   func(session *model.Session, question *model.Question) (model.JSONMap, func(state *model.ProgressState), error)
}

func (s *taskService) runSessionTask(sessionID uint, run taskRun) (*model.Task, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, errors.New("session is completed; no further task runs are permitted")
	}
	if session.ProgressState.PhaseStatus == model.PhaseStatusRunning {
		return nil, errors.New("another phase action is still running")
	}
	question, err := s.questionRepo.GetQuestionByID(session.QuestionID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		PublicID:  uuid.New().String(),
		Type:      run.taskType,
		Status:    model.TaskStatusPending,
		SessionID: &session.ID,
		AnswerID:  session.AnswerID,
		Payload:   model.JSONMap{"session_id": session.ID},
	}
	if err := s.taskRepo.CreateTask(task); err != nil {
		return nil, err
	}

	// Mark the phase busy for the duration of the call so a second tab
	// observes the lock.
	session.ProgressState.PhaseStatus = model.PhaseStatusRunning
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.UpdateSession(session); err != nil {
		return nil, err
	}
	task.Status = model.TaskStatusRunning
	task.UpdatedAt = time.Now().UTC()
	if err := s.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}

	start := time.Now()
	summary, mutate, err := run.invoke(session, question)
	latency := int(time.Since(start).Milliseconds())

	if err != nil {
		task.Status = model.TaskStatusFailed
		task.ErrorMessage = err.Error()
		task.UpdatedAt = time.Now().UTC()
		_ = s.taskRepo.UpdateTask(task)

		session.ProgressState.PhaseStatus = model.PhaseStatusFailed
		session.ProgressState.PhaseError = err.Error()
		session.UpdatedAt = time.Now().UTC()
		_ = s.sessionRepo.UpdateSession(session)
		return task, err
	}

	conversation := &model.LLMConversation{
		SessionID: &session.ID,
		TaskID:    &task.ID,
		Purpose:   run.taskType,
		Messages: model.JSONMap{
			"question": question.Body,
			"draft":    session.UserAnswerDraft,
		},
		Result:    summary,
		ModelName: s.llmClient.ModelName(),
		LatencyMS: latency,
	}
	if err := s.sessionRepo.CreateConversation(conversation); err != nil {
		utilities.Warn("failed to log llm conversation: %v", err)
	}

	if mutate != nil {
		mutate(&session.ProgressState)
	}
	session.ProgressState.PhaseStatus = model.PhaseStatusIdle
	session.ProgressState.PhaseError = ""
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.UpdateSession(session); err != nil {
		return nil, err
	}

	task.Status = model.TaskStatusSucceeded
	task.ResultSummary = summary
	task.UpdatedAt = time.Now().UTC()
	if err := s.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// awaitPhaseFor maps the last compare decision to the post-eval phase. With
// no compare on record the workflow defaults to the plain finalize path.
func awaitPhaseFor(state *model.ProgressState) string {
	if state.LastCompare != nil && state.LastCompare.Decision == model.CompareDecisionNewGroup {
		return model.PhaseAwaitNewGroup
	}
	return model.PhaseAwaitFinalize
}

func (s *taskService) RunEvalTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeEval,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			if session.ProgressState.Phase != model.PhaseDraft {
				return nil, nil, errors.New("evaluation is only available while drafting")
			}
			result, err := s.llmClient.EvaluateAnswer(question, session.UserAnswerDraft)
			if err != nil {
				return nil, nil, err
			}
			result.SavedAt = time.Now().UTC()
			summary := model.JSONMap{"feedback": result.Feedback, "score": result.Score}
			return summary, func(state *model.ProgressState) {
				state.LastEval = result
				state.Phase = awaitPhaseFor(state)
			}, nil
		},
	})
}

func (s *taskService) RunComposeTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeCompose,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			state := session.ProgressState
			if state.LastEval == nil {
				return nil, nil, errors.New("run an evaluation before composing")
			}
			if state.Phase != model.PhaseAwaitFinalize && state.Phase != model.PhaseAwaitNewGroup {
				return nil, nil, errors.New("composition is only available after evaluation")
			}
			result, err := s.llmClient.ComposeAnswer(question, session.UserAnswerDraft)
			if err != nil {
				return nil, nil, err
			}
			result.SavedAt = time.Now().UTC()
			summary := model.JSONMap{"title": result.Title, "text": result.Text, "notes": result.Notes}
			return summary, func(state *model.ProgressState) {
				state.LastCompose = result
			}, nil
		},
	})
}

func (s *taskService) RunCompareTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeCompare,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			groups, err := s.sessionRepo.GetAnswerGroupsByQuestion(question.ID)
			if err != nil {
				return nil, nil, err
			}
			result, err := s.llmClient.CompareAnswers(question, session.UserAnswerDraft, groups)
			if err != nil {
				return nil, nil, err
			}
			result.SavedAt = time.Now().UTC()
			summary := model.JSONMap{
				"decision":                result.Decision,
				"matched_answer_group_id": result.MatchedAnswerGroupID,
				"reason":                  result.Reason,
			}
			return summary, func(state *model.ProgressState) {
				state.LastCompare = result
				// The decision only re-routes a workflow that has already
				// passed evaluation; earlier phases keep their position.
				if state.Phase == model.PhaseAwaitFinalize || state.Phase == model.PhaseAwaitNewGroup {
					state.Phase = awaitPhaseFor(state)
				}
			}, nil
		},
	})
}

func (s *taskService) RunGapHighlightTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeGapHighlight,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			sourceText := ""
			if id := session.ProgressState.ReviewSourceAnswerID; id != 0 {
				answer, err := s.sessionRepo.GetAnswerByID(id)
				if err != nil {
					return nil, nil, err
				}
				sourceText = answer.Text
			}
			result, err := s.llmClient.HighlightGaps(question, session.UserAnswerDraft, sourceText)
			if err != nil {
				return nil, nil, err
			}
			summary := model.JSONMap{"summary": result.Summary, "gaps": result.Gaps}
			return summary, nil, nil
		},
	})
}

func (s *taskService) RunRefineTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeRefine,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			result, err := s.llmClient.RefineAnswer(question, session.UserAnswerDraft)
			if err != nil {
				return nil, nil, err
			}
			summary := model.JSONMap{"title": result.Title, "text": result.Text}
			return summary, nil, nil
		},
	})
}

func (s *taskService) RunTranslateTask(sessionID uint) (*model.Task, error) {
	return s.runSessionTask(sessionID, taskRun{
		taskType: model.TaskTypeTranslate,
		invoke: func(session *model.Session, question *model.Question) (model.JSONMap, func(*model.ProgressState), error) {
			result, err := s.llmClient.TranslateText(session.UserAnswerDraft)
			if err != nil {
				return nil, nil, err
			}
			summary := model.JSONMap{
				"translation_en": result.TranslationEN,
				"translation_zh": result.TranslationZH,
			}
			return summary, nil, nil
		},
	})
}

// RunStructureTask breaks a finalized answer into paragraphs, sentences and
// lexemes and seeds a flashcard for each study entity. It runs outside the
// phase lock: the session is already in the learning phase and the breakdown
// must not block learning actions.
func (s *taskService) RunStructureTask(sessionID, answerID uint) (*model.Task, error) {
	answer, err := s.sessionRepo.GetAnswerByID(answerID)
	if err != nil {
		return nil, err
	}
	group, err := s.sessionRepo.GetAnswerGroupByID(answer.AnswerGroupID)
	if err != nil {
		return nil, err
	}
	question, err := s.questionRepo.GetQuestionByID(group.QuestionID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		PublicID:  uuid.New().String(),
		Type:      model.TaskTypeStructure,
		Status:    model.TaskStatusRunning,
		SessionID: &sessionID,
		AnswerID:  &answerID,
		Payload:   model.JSONMap{"answer_id": answerID},
	}
	if err := s.taskRepo.CreateTask(task); err != nil {
		return nil, err
	}

	plan, err := s.llmClient.StructureAnswer(question, answer.Text)
	if err != nil {
		task.Status = model.TaskStatusFailed
		task.ErrorMessage = err.Error()
		task.UpdatedAt = time.Now().UTC()
		_ = s.taskRepo.UpdateTask(task)
		return task, err
	}

	sentences, lexemes, err := s.applyStructurePlan(answerID, plan)
	if err != nil {
		task.Status = model.TaskStatusFailed
		task.ErrorMessage = err.Error()
		task.UpdatedAt = time.Now().UTC()
		_ = s.taskRepo.UpdateTask(task)
		return task, err
	}

	task.Status = model.TaskStatusSucceeded
	task.ResultSummary = model.JSONMap{
		"paragraphs": len(plan.Paragraphs),
		"sentences":  sentences,
		"lexemes":    lexemes,
	}
	task.UpdatedAt = time.Now().UTC()
	if err := s.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) applyStructurePlan(answerID uint, plan *llm.StructurePlan) (int, int, error) {
	sentenceCount := 0
	lexemeCount := 0
	for pi, paragraphPlan := range plan.Paragraphs {
		paragraph := &model.Paragraph{
			AnswerID: answerID,
			Index:    pi + 1,
			Summary:  paragraphPlan.Summary,
		}
		if err := s.flashcardRepo.CreateParagraph(paragraph); err != nil {
			return sentenceCount, lexemeCount, err
		}
		for si, sentencePlan := range paragraphPlan.Sentences {
			sentence := &model.Sentence{
				ParagraphID:   paragraph.ID,
				AnswerID:      answerID,
				Index:         si + 1,
				Text:          sentencePlan.Text,
				TranslationEN: sentencePlan.TranslationEN,
				TranslationZH: sentencePlan.TranslationZH,
			}
			if err := s.flashcardRepo.CreateSentence(sentence); err != nil {
				return sentenceCount, lexemeCount, err
			}
			sentenceCount++
			if err := s.seedCard("sentence", sentence.ID); err != nil {
				return sentenceCount, lexemeCount, err
			}
			for _, lexemePlan := range sentencePlan.Lexemes {
				lexeme := &model.Lexeme{
					SentenceID:     sentence.ID,
					AnswerID:       answerID,
					Lemma:          lexemePlan.Lemma,
					Gloss:          lexemePlan.Gloss,
					SampleSentence: lexemePlan.SampleSentence,
				}
				if err := s.flashcardRepo.CreateLexeme(lexeme); err != nil {
					return sentenceCount, lexemeCount, err
				}
				lexemeCount++
				if err := s.seedCard("lexeme", lexeme.ID); err != nil {
					return sentenceCount, lexemeCount, err
				}
			}
		}
	}
	return sentenceCount, lexemeCount, nil
}

func (s *taskService) seedCard(entityType string, entityID uint) error {
	if existing, err := s.flashcardRepo.GetByEntity(entityType, entityID); err == nil && existing != nil {
		return nil
	}
	card := &model.FlashcardProgress{
		EntityType:   entityType,
		EntityID:     entityID,
		DueAt:        time.Now().UTC(),
		Streak:       0,
		IntervalDays: 1,
	}
	return s.flashcardRepo.CreateCard(card)
}

// InitStructurePipeline wires the finalize event to the structure task.
func InitStructurePipeline(bus *utilities.EventBus, tasks TaskService) {
	bus.Subscribe(EventSessionFinalized, func(data interface{}) {
		event, ok := data.(SessionFinalizedEvent)
		if !ok {
			utilities.Warn("invalid payload on %s event", EventSessionFinalized)
			return
		}
		if _, err := tasks.RunStructureTask(event.SessionID, event.AnswerID); err != nil {
			utilities.Error("structure pipeline failed for answer %d: %v", event.AnswerID, err)
		}
	})
}

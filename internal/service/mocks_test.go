package service

import (
	"errors"

	"examloop-backend/internal/llm"
	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
)

type mockSessionRepo struct {
	sessions      map[uint]*model.Session
	groups        map[uint]*model.AnswerGroup
	answers       map[uint]*model.Answer
	conversations []model.LLMConversation

	nextGroupID  uint
	nextAnswerID uint
	sessionRefs  map[uint]int64 // answer id -> referencing session count
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions:    map[uint]*model.Session{},
		groups:      map[uint]*model.AnswerGroup{},
		answers:     map[uint]*model.Answer{},
		sessionRefs: map[uint]int64{},
	}
}

func (m *mockSessionRepo) addSession(session model.Session) *model.Session {
	stored := session
	m.sessions[session.ID] = &stored
	return &stored
}

func (m *mockSessionRepo) CreateSession(session *model.Session) error {
	if session.ID == 0 {
		session.ID = uint(len(m.sessions) + 1)
	}
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *mockSessionRepo) GetSessions() ([]model.Session, error) {
	var out []model.Session
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSessionRepo) GetSessionByID(sessionID uint) (*model.Session, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	copied := *session
	return &copied, nil
}

func (m *mockSessionRepo) UpdateSession(session *model.Session) error {
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *mockSessionRepo) DeleteSession(sessionID uint) error {
	delete(m.sessions, sessionID)
	return nil
}

func (m *mockSessionRepo) CreateAnswerGroup(group *model.AnswerGroup) error {
	m.nextGroupID++
	group.ID = m.nextGroupID
	stored := *group
	m.groups[group.ID] = &stored
	return nil
}

func (m *mockSessionRepo) GetAnswerGroupByID(groupID uint) (*model.AnswerGroup, error) {
	group, ok := m.groups[groupID]
	if !ok {
		return nil, errors.New("answer group not found")
	}
	copied := *group
	return &copied, nil
}

func (m *mockSessionRepo) GetAnswerGroupsByQuestion(questionID uint) ([]model.AnswerGroup, error) {
	var out []model.AnswerGroup
	for _, g := range m.groups {
		if g.QuestionID == questionID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) DeleteAnswerGroup(groupID uint) error {
	delete(m.groups, groupID)
	return nil
}

func (m *mockSessionRepo) CreateAnswer(answer *model.Answer) error {
	m.nextAnswerID++
	answer.ID = m.nextAnswerID
	stored := *answer
	m.answers[answer.ID] = &stored
	return nil
}

func (m *mockSessionRepo) GetAnswerByID(answerID uint) (*model.Answer, error) {
	answer, ok := m.answers[answerID]
	if !ok {
		return nil, errors.New("answer not found")
	}
	copied := *answer
	return &copied, nil
}

func (m *mockSessionRepo) DeleteAnswer(answerID uint) error {
	delete(m.answers, answerID)
	return nil
}

func (m *mockSessionRepo) NextVersionIndex(groupID uint) (int, error) {
	max := 0
	for _, a := range m.answers {
		if a.AnswerGroupID == groupID && a.VersionIndex > max {
			max = a.VersionIndex
		}
	}
	return max + 1, nil
}

func (m *mockSessionRepo) CountSessionsByAnswer(answerID uint) (int64, error) {
	return m.sessionRefs[answerID], nil
}

func (m *mockSessionRepo) CreateConversation(conversation *model.LLMConversation) error {
	m.conversations = append(m.conversations, *conversation)
	return nil
}

func (m *mockSessionRepo) GetConversationsBySession(sessionID uint, taskIDs []uint) ([]model.LLMConversation, error) {
	var out []model.LLMConversation
	for _, c := range m.conversations {
		if c.SessionID != nil && *c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockQuestionRepo struct {
	questions map[uint]*model.Question
}

func newMockQuestionRepo(questions ...model.Question) *mockQuestionRepo {
	repo := &mockQuestionRepo{questions: map[uint]*model.Question{}}
	for i := range questions {
		q := questions[i]
		repo.questions[q.ID] = &q
	}
	return repo
}

func (m *mockQuestionRepo) CreateQuestion(question *model.Question) error {
	if question.ID == 0 {
		question.ID = uint(len(m.questions) + 1)
	}
	stored := *question
	m.questions[question.ID] = &stored
	return nil
}

func (m *mockQuestionRepo) GetQuestions(questionType string, year int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (m *mockQuestionRepo) GetQuestionByID(questionID uint) (*model.Question, error) {
	question, ok := m.questions[questionID]
	if !ok {
		return nil, errors.New("question not found")
	}
	copied := *question
	return &copied, nil
}

func (m *mockQuestionRepo) UpdateQuestion(question *model.Question) error {
	stored := *question
	m.questions[question.ID] = &stored
	return nil
}

func (m *mockQuestionRepo) DeleteQuestion(questionID uint) error {
	delete(m.questions, questionID)
	return nil
}

type mockTaskRepo struct {
	tasks  map[uint]*model.Task
	nextID uint
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: map[uint]*model.Task{}}
}

func (m *mockTaskRepo) CreateTask(task *model.Task) error {
	m.nextID++
	task.ID = m.nextID
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) UpdateTask(task *model.Task) error {
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) GetTaskByID(taskID uint) (*model.Task, error) {
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, errors.New("task not found")
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskRepo) ListTasks(filter repository.TaskFilter) ([]model.Task, error) {
	var out []model.Task
	for _, t := range m.tasks {
		if filter.SessionID != 0 && (t.SessionID == nil || *t.SessionID != filter.SessionID) {
			continue
		}
		if filter.TaskType != "" && t.Type != filter.TaskType {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTaskRepo) GetTasksBySession(sessionID uint) ([]model.Task, error) {
	return m.ListTasks(repository.TaskFilter{SessionID: sessionID})
}

type mockFlashcardRepo struct {
	cards      map[uint]*model.FlashcardProgress
	sentences  map[uint]*model.Sentence
	lexemes    map[uint]*model.Lexeme
	paragraphs map[uint]*model.Paragraph
	dueByAns   map[uint][]model.FlashcardProgress
	nextID     uint
}

func newMockFlashcardRepo() *mockFlashcardRepo {
	return &mockFlashcardRepo{
		cards:      map[uint]*model.FlashcardProgress{},
		sentences:  map[uint]*model.Sentence{},
		lexemes:    map[uint]*model.Lexeme{},
		paragraphs: map[uint]*model.Paragraph{},
		dueByAns:   map[uint][]model.FlashcardProgress{},
	}
}

func (m *mockFlashcardRepo) GetByEntity(entityType string, entityID uint) (*model.FlashcardProgress, error) {
	for _, c := range m.cards {
		if c.EntityType == entityType && c.EntityID == entityID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errors.New("card not found")
}

func (m *mockFlashcardRepo) CreateCard(card *model.FlashcardProgress) error {
	m.nextID++
	card.ID = m.nextID
	stored := *card
	m.cards[card.ID] = &stored
	return nil
}

func (m *mockFlashcardRepo) UpdateCard(card *model.FlashcardProgress) error {
	stored := *card
	m.cards[card.ID] = &stored
	return nil
}

func (m *mockFlashcardRepo) GetCardByID(cardID uint) (*model.FlashcardProgress, error) {
	card, ok := m.cards[cardID]
	if !ok {
		return nil, errors.New("card not found")
	}
	copied := *card
	return &copied, nil
}

func (m *mockFlashcardRepo) ListDue(entityType string, limit int) ([]model.FlashcardProgress, error) {
	var out []model.FlashcardProgress
	for _, c := range m.cards {
		if entityType == "" || c.EntityType == entityType {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockFlashcardRepo) ListDueForAnswer(answerID uint, limit int) ([]model.FlashcardProgress, error) {
	return m.dueByAns[answerID], nil
}

func (m *mockFlashcardRepo) GetSentenceByID(sentenceID uint) (*model.Sentence, error) {
	sentence, ok := m.sentences[sentenceID]
	if !ok {
		return nil, errors.New("sentence not found")
	}
	copied := *sentence
	return &copied, nil
}

func (m *mockFlashcardRepo) GetLexemeByID(lexemeID uint) (*model.Lexeme, error) {
	lexeme, ok := m.lexemes[lexemeID]
	if !ok {
		return nil, errors.New("lexeme not found")
	}
	copied := *lexeme
	return &copied, nil
}

func (m *mockFlashcardRepo) CreateParagraph(paragraph *model.Paragraph) error {
	m.nextID++
	paragraph.ID = m.nextID
	stored := *paragraph
	m.paragraphs[paragraph.ID] = &stored
	return nil
}

func (m *mockFlashcardRepo) CreateSentence(sentence *model.Sentence) error {
	m.nextID++
	sentence.ID = m.nextID
	stored := *sentence
	m.sentences[sentence.ID] = &stored
	return nil
}

func (m *mockFlashcardRepo) CreateLexeme(lexeme *model.Lexeme) error {
	m.nextID++
	lexeme.ID = m.nextID
	stored := *lexeme
	m.lexemes[lexeme.ID] = &stored
	return nil
}

// mockLLM returns canned results and counts invocations.
type mockLLM struct {
	evalCalls    int
	composeCalls int
	compareCalls int

	evalResult    *model.EvalResult
	composeResult *model.ComposeResult
	compareResult *model.CompareResult
	structurePlan *llm.StructurePlan
	err           error
}

func (m *mockLLM) ModelName() string { return "mock-model" }

func (m *mockLLM) EvaluateAnswer(question *model.Question, draft string) (*model.EvalResult, error) {
	m.evalCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.evalResult != nil {
		result := *m.evalResult
		return &result, nil
	}
	return &model.EvalResult{Feedback: "fine", Score: 3}, nil
}

func (m *mockLLM) ComposeAnswer(question *model.Question, draft string) (*model.ComposeResult, error) {
	m.composeCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.composeResult != nil {
		result := *m.composeResult
		return &result, nil
	}
	return &model.ComposeResult{Title: "Model answer", Text: "composed text"}, nil
}

func (m *mockLLM) CompareAnswers(question *model.Question, draft string, groups []model.AnswerGroup) (*model.CompareResult, error) {
	m.compareCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.compareResult != nil {
		result := *m.compareResult
		return &result, nil
	}
	return &model.CompareResult{Decision: model.CompareDecisionNewGroup}, nil
}

func (m *mockLLM) HighlightGaps(question *model.Question, draft, sourceText string) (*llm.GapHighlight, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GapHighlight{Summary: "one gap", Gaps: []string{"missing example"}}, nil
}

func (m *mockLLM) RefineAnswer(question *model.Question, draft string) (*llm.RefinedAnswer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.RefinedAnswer{Title: "Refined", Text: "refined text"}, nil
}

func (m *mockLLM) TranslateText(text string) (*llm.Translation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Translation{TranslationEN: "english", TranslationZH: "中文"}, nil
}

func (m *mockLLM) StructureAnswer(question *model.Question, answerText string) (*llm.StructurePlan, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.structurePlan != nil {
		return m.structurePlan, nil
	}
	return &llm.StructurePlan{}, nil
}

package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"examloop-backend/internal/model"
)

// Model calls can take minutes, so the socket timeout is generous and fixed.
const defaultClientTimeout = 600 * time.Second

// HTTPClient implements API over the REST backend.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultClientTimeout},
	}
}

// WithToken sets the bearer token sent on every request.
func (h *HTTPClient) WithToken(token string) *HTTPClient {
	h.token = token
	return h
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (h *HTTPClient) GetSession(ctx context.Context, sessionID uint) (*model.Session, error) {
	var session model.Session
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/sessions/%d", sessionID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *HTTPClient) UpdateSession(ctx context.Context, sessionID uint, patch SessionPatch) (*model.Session, error) {
	var session model.Session
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/sessions/%d", sessionID), patch, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *HTTPClient) GetSessionHistory(ctx context.Context, sessionID uint) (*model.SessionHistory, error) {
	var history model.SessionHistory
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/sessions/%d/history", sessionID), nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (h *HTTPClient) RunTask(ctx context.Context, kind string, sessionID uint) (*model.Task, error) {
	var task model.Task
	path := fmt.Sprintf("/sessions/%d/tasks/%s", sessionID, url.PathEscape(kind))
	if err := h.do(ctx, http.MethodPost, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (h *HTTPClient) FinalizeSession(ctx context.Context, sessionID uint, payload model.SessionFinalizePayload) (*model.Session, error) {
	var session model.Session
	if err := h.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/finalize", sessionID), payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *HTTPClient) CompleteLearning(ctx context.Context, sessionID uint) (*model.Session, error) {
	var session model.Session
	if err := h.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/complete-learning", sessionID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *HTTPClient) ListGuidedFlashcards(ctx context.Context, answerID uint, limit int) ([]model.FlashcardStudyCard, error) {
	query := url.Values{}
	query.Set("mode", "guided")
	query.Set("answer_id", strconv.FormatUint(uint64(answerID), 10))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var cards []model.FlashcardStudyCard
	if err := h.do(ctx, http.MethodGet, "/flashcards/?"+query.Encode(), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (h *HTTPClient) ReviewFlashcard(ctx context.Context, cardID uint, score int) (*model.FlashcardProgress, error) {
	var progress model.FlashcardProgress
	path := fmt.Sprintf("/flashcards/%d/review?score=%d", cardID, score)
	if err := h.do(ctx, http.MethodPost, path, nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (h *HTTPClient) ListAnswerGroupsByQuestion(ctx context.Context, questionID uint) ([]model.AnswerGroup, error) {
	var groups []model.AnswerGroup
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/answer-groups/by-question/%d", questionID), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (h *HTTPClient) GetAnswer(ctx context.Context, answerID uint) (*model.Answer, error) {
	var answer model.Answer
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/answers/%d", answerID), nil, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

package service

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"examloop-backend/internal/repository"
)

// ReportService renders an answer group's version history as a PDF for
// printing or offline review.
type ReportService interface {
	BuildAnswerGroupReport(groupID uint) ([]byte, string, error)
}

type reportService struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
}

func NewReportService(sessionRepo repository.SessionRepository, questionRepo repository.QuestionRepository) ReportService {
	return &reportService{sessionRepo: sessionRepo, questionRepo: questionRepo}
}

func (s *reportService) BuildAnswerGroupReport(groupID uint) ([]byte, string, error) {
	group, err := s.sessionRepo.GetAnswerGroupByID(groupID)
	if err != nil {
		return nil, "", err
	}
	question, err := s.questionRepo.GetQuestionByID(group.QuestionID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(group.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, group.Title, "", "L", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("Question: %s (%d/%d)", question.Title, question.Year, question.Month), "", "L", false)
	pdf.Ln(4)
	pdf.MultiCell(0, 6, question.Body, "", "L", false)

	for _, answer := range group.Answers {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, fmt.Sprintf("V%d - %s", answer.VersionIndex, answer.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Ln(2)
		pdf.MultiCell(0, 6, answer.Text, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("answer-group-%d.pdf", group.ID)
	return buf.Bytes(), filename, nil
}

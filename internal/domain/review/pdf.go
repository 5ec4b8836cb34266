package review

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ExportPDF renders a review as a printable document for the reviewee's
// personnel file.
func (s *Service) ExportPDF(ctx context.Context, reviewID int64) ([]byte, error) {
	detail, err := s.store.ReviewDetail(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	r := detail.Review
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Review")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Reviewee: %s", r.RevieweeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Reviewer: %s", r.ReviewerName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s", r.CycleName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", r.Status))
	if r.SubmittedAt != nil {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Submitted: %s", r.SubmittedAt.Format("2006-01-02")))
	}
	pdf.Ln(10)

	answersByQuestion := map[int64]Answer{}
	for _, a := range detail.Answers {
		answersByQuestion[a.QuestionID] = a
	}

	for _, q := range detail.Questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", q.DisplayOrder, q.QuestionText), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		if a, ok := answersByQuestion[q.ID]; ok {
			switch {
			case a.AnswerRating != nil:
				pdf.MultiCell(0, 6, fmt.Sprintf("Rating: %d / 5", *a.AnswerRating), "", "L", false)
			case a.AnswerText != nil:
				pdf.MultiCell(0, 6, *a.AnswerText, "", "L", false)
			}
		} else {
			pdf.MultiCell(0, 6, "Not answered", "", "L", false)
		}
		pdf.Ln(3)
	}

	if r.OverallComments != nil && *r.OverallComments != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, "Overall comments")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, *r.OverallComments, "", "L", false)
		pdf.Ln(3)
	}
	if r.AISummary != nil && *r.AISummary != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, "Summary")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, *r.AISummary, "", "L", false)
	}
	if r.AcknowledgementComments != nil && *r.AcknowledgementComments != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, "Acknowledgement")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, *r.AcknowledgementComments, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

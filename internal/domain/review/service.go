package review

import (
	"context"
	"errors"
	"fmt"

	"staffreview/internal/platform/summarizer"
)

var (
	ErrNotFound      = errors.New("review not found")
	ErrNoDepartments = errors.New("at least one department is required")
	ErrNoHRAdmin     = errors.New("no active HR admin to assign head reviews to")
)

// AnswerError rejects a submitted answer that violates the template's
// question set or the answer-shape rules.
type AnswerError struct {
	QuestionID int64
	Reason     string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer for question %d: %s", e.QuestionID, e.Reason)
}

// Summarizer condenses overall comments into a short summary; it never fails.
type Summarizer interface {
	Summarize(ctx context.Context, text string) summarizer.Result
}

type Service struct {
	store             StoreAPI
	summaries         Summarizer
	allowResubmission bool
}

func NewService(store StoreAPI, summaries Summarizer, allowResubmission bool) *Service {
	return &Service{store: store, summaries: summaries, allowResubmission: allowResubmission}
}

type CycleResult struct {
	CycleID int64
	Reviews []ReviewSpec
}

// CreateCycle fans a cycle definition out into persisted review assignments.
// The head of each participating department is reviewed by the HR admin on
// the dept-head template; the department's staff are reviewed by that head on
// the staff template. The whole fan-out commits or rolls back as one unit.
func (s *Service) CreateCycle(ctx context.Context, input CycleInput) (CycleResult, error) {
	if len(input.DepartmentIDs) == 0 {
		return CycleResult{}, ErrNoDepartments
	}

	hrAdminID, err := s.store.HRAdminID(ctx)
	if err != nil {
		return CycleResult{}, err
	}

	rosters, err := s.store.DepartmentRosters(ctx, input.DepartmentIDs)
	if err != nil {
		return CycleResult{}, err
	}

	specs := planFanOut(hrAdminID, input, rosters)
	cycleID, err := s.store.CreateCycle(ctx, input, specs)
	if err != nil {
		return CycleResult{}, err
	}
	return CycleResult{CycleID: cycleID, Reviews: specs}, nil
}

func (s *Service) ListCycles(ctx context.Context) ([]Cycle, error) {
	return s.store.ListCycles(ctx)
}

func (s *Service) ReviewerQueue(ctx context.Context, userID int64) ([]ReviewerQueueItem, error) {
	return s.store.ReviewerQueue(ctx, userID)
}

func (s *Service) RevieweeQueue(ctx context.Context, userID int64) ([]RevieweeQueueItem, error) {
	return s.store.RevieweeQueue(ctx, userID)
}

func (s *Service) ReviewDetail(ctx context.Context, reviewID int64) (Detail, error) {
	return s.store.ReviewDetail(ctx, reviewID)
}

type SubmitResult struct {
	Summary    string
	RevieweeID int64
	ReviewerID int64
}

// Submit records the reviewer's answers and overall comments, generates the
// AI-assisted summary and moves the review to Completed. Resubmission of a
// Completed review replaces its previous answers when enabled.
func (s *Service) Submit(ctx context.Context, reviewID int64, answers []AnswerInput, overallComments string) (SubmitResult, error) {
	hdr, err := s.store.ReviewHeader(ctx, reviewID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := canSubmit(hdr.Status, s.allowResubmission); err != nil {
		return SubmitResult{}, err
	}

	questionTypes, err := s.store.QuestionTypes(ctx, hdr.TemplateID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := validateAnswers(answers, questionTypes); err != nil {
		return SubmitResult{}, err
	}

	result := s.summaries.Summarize(ctx, overallComments)
	summary := personalizeSummary(result.Summary, hdr.RevieweeName)

	if err := s.store.CompleteReview(ctx, reviewID, overallComments, summary, answers); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Summary: summary, RevieweeID: hdr.RevieweeID, ReviewerID: hdr.ReviewerID}, nil
}

type AcknowledgeResult struct {
	RevieweeID int64
	ReviewerID int64
}

// Acknowledge records the reviewee's confirmation of a Completed review.
func (s *Service) Acknowledge(ctx context.Context, reviewID int64, comments string) (AcknowledgeResult, error) {
	hdr, err := s.store.ReviewHeader(ctx, reviewID)
	if err != nil {
		return AcknowledgeResult{}, err
	}
	if err := canAcknowledge(hdr.Status); err != nil {
		return AcknowledgeResult{}, err
	}

	if err := s.store.AcknowledgeReview(ctx, reviewID, comments); err != nil {
		return AcknowledgeResult{}, err
	}
	return AcknowledgeResult{RevieweeID: hdr.RevieweeID, ReviewerID: hdr.ReviewerID}, nil
}

// Summarize exposes the collaborator directly for the test endpoint.
func (s *Service) Summarize(ctx context.Context, text string) summarizer.Result {
	return s.summaries.Summarize(ctx, text)
}

func validateAnswers(answers []AnswerInput, questionTypes map[int64]string) error {
	for _, answer := range answers {
		qtype, ok := questionTypes[answer.QuestionID]
		if !ok {
			return &AnswerError{QuestionID: answer.QuestionID, Reason: "question does not belong to the review's template"}
		}

		switch qtype {
		case "RatingScale1-5":
			if answer.AnswerRating == nil {
				return &AnswerError{QuestionID: answer.QuestionID, Reason: "rating is required"}
			}
			if *answer.AnswerRating < 1 || *answer.AnswerRating > 5 {
				return &AnswerError{QuestionID: answer.QuestionID, Reason: "rating must be between 1 and 5"}
			}
			if answer.AnswerText != nil && *answer.AnswerText != "" {
				return &AnswerError{QuestionID: answer.QuestionID, Reason: "rating questions do not accept free text"}
			}
		case "OpenText":
			if answer.AnswerRating != nil {
				return &AnswerError{QuestionID: answer.QuestionID, Reason: "open-text questions do not accept a rating"}
			}
			if answer.AnswerText == nil {
				return &AnswerError{QuestionID: answer.QuestionID, Reason: "answer text is required"}
			}
		default:
			return &AnswerError{QuestionID: answer.QuestionID, Reason: "unknown question type " + qtype}
		}
	}
	return nil
}

package reports

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardMetrics struct {
	TotalReviews     int     `json:"totalReviews"`
	CompletedReviews int     `json:"completedReviews"`
	PendingReviews   int     `json:"pendingReviews"`
	OverdueReviews   int     `json:"overdueReviews"`
	CompletionRate   float64 `json:"completionRate"`
}

type QuestionAverage struct {
	QuestionID    int64   `json:"questionId"`
	QuestionText  string  `json:"questionText"`
	TemplateName  string  `json:"templateName"`
	AverageRating float64 `json:"averageRating"`
	AnswerCount   int     `json:"answerCount"`
}

type DepartmentCompletion struct {
	DepartmentID     int64   `json:"departmentId"`
	DepartmentName   string  `json:"departmentName"`
	TotalReviews     int     `json:"totalReviews"`
	CompletedReviews int     `json:"completedReviews"`
	CompletionRate   float64 `json:"completionRate"`
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// round1 keeps percentages readable on the dashboard.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

// DashboardMetrics aggregates the HR-wide review counts. Acknowledged reviews
// count as completed; a review is overdue when still pending past its cycle's
// end date.
func (s *Service) DashboardMetrics(ctx context.Context) (DashboardMetrics, error) {
	var m DashboardMetrics
	err := s.DB.QueryRow(ctx, `
    SELECT count(*),
           count(*) FILTER (WHERE r.status IN ('Completed', 'Acknowledged')),
           count(*) FILTER (WHERE r.status = 'Pending'),
           count(*) FILTER (WHERE r.status = 'Pending' AND rc.end_date < now())
    FROM reviews r
    JOIN review_cycles rc ON r.cycle_id = rc.id
  `).Scan(&m.TotalReviews, &m.CompletedReviews, &m.PendingReviews, &m.OverdueReviews)
	if err != nil {
		return DashboardMetrics{}, err
	}
	m.CompletionRate = completionRate(m.CompletedReviews, m.TotalReviews)
	return m, nil
}

func (s *Service) AverageRatingsByQuestion(ctx context.Context) ([]QuestionAverage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT q.id, q.question_text, t.name, avg(a.answer_rating), count(a.id)
    FROM review_answers a
    JOIN template_questions q ON a.question_id = q.id
    JOIN review_templates t ON q.template_id = t.id
    WHERE a.answer_rating IS NOT NULL
    GROUP BY q.id, q.question_text, t.name
    ORDER BY t.name, q.display_order
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var averages []QuestionAverage
	for rows.Next() {
		var qa QuestionAverage
		if err := rows.Scan(&qa.QuestionID, &qa.QuestionText, &qa.TemplateName, &qa.AverageRating, &qa.AnswerCount); err != nil {
			return nil, err
		}
		qa.AverageRating = round1(qa.AverageRating)
		averages = append(averages, qa)
	}
	return averages, rows.Err()
}

func (s *Service) ReviewsByDepartment(ctx context.Context) ([]DepartmentCompletion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name,
           count(r.id),
           count(r.id) FILTER (WHERE r.status IN ('Completed', 'Acknowledged'))
    FROM departments d
    LEFT JOIN users u ON u.department_id = d.id
    LEFT JOIN reviews r ON r.reviewee_id = u.id
    GROUP BY d.id, d.name
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []DepartmentCompletion
	for rows.Next() {
		var dc DepartmentCompletion
		if err := rows.Scan(&dc.DepartmentID, &dc.DepartmentName, &dc.TotalReviews, &dc.CompletedReviews); err != nil {
			return nil, err
		}
		dc.CompletionRate = completionRate(dc.CompletedReviews, dc.TotalReviews)
		completions = append(completions, dc)
	}
	return completions, rows.Err()
}

// DeptHeadMetrics scopes the dashboard counts to the reviews a department
// head owes as reviewer.
func (s *Service) DeptHeadMetrics(ctx context.Context, headUserID int64) (DashboardMetrics, error) {
	var m DashboardMetrics
	err := s.DB.QueryRow(ctx, `
    SELECT count(*),
           count(*) FILTER (WHERE r.status IN ('Completed', 'Acknowledged')),
           count(*) FILTER (WHERE r.status = 'Pending'),
           count(*) FILTER (WHERE r.status = 'Pending' AND rc.end_date < now())
    FROM reviews r
    JOIN review_cycles rc ON r.cycle_id = rc.id
    WHERE r.reviewer_id = $1
  `, headUserID).Scan(&m.TotalReviews, &m.CompletedReviews, &m.PendingReviews, &m.OverdueReviews)
	if err != nil {
		return DashboardMetrics{}, err
	}
	m.CompletionRate = completionRate(m.CompletedReviews, m.TotalReviews)
	return m, nil
}

func (s *Service) TeamStats(ctx context.Context, headUserID int64) ([]QuestionAverage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT q.id, q.question_text, t.name, avg(a.answer_rating), count(a.id)
    FROM review_answers a
    JOIN reviews r ON a.review_id = r.id
    JOIN template_questions q ON a.question_id = q.id
    JOIN review_templates t ON q.template_id = t.id
    WHERE r.reviewer_id = $1 AND a.answer_rating IS NOT NULL
    GROUP BY q.id, q.question_text, t.name
    ORDER BY t.name, q.display_order
  `, headUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var averages []QuestionAverage
	for rows.Next() {
		var qa QuestionAverage
		if err := rows.Scan(&qa.QuestionID, &qa.QuestionText, &qa.TemplateName, &qa.AverageRating, &qa.AnswerCount); err != nil {
			return nil, err
		}
		qa.AverageRating = round1(qa.AverageRating)
		averages = append(averages, qa)
	}
	return averages, rows.Err()
}

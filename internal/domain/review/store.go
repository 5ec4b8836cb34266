package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffreview/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// HRAdminID resolves the designated HR admin identity: the longest-standing
// active HR Admin account. In a fresh install this is the seeded admin.
func (s *Store) HRAdminID(ctx context.Context) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM users
    WHERE role = $1 AND account_status = 'Active'
    ORDER BY id
    LIMIT 1
  `, auth.RoleHRAdmin).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoHRAdmin
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DepartmentRosters(ctx context.Context, departmentIDs []int64) ([]DepartmentRoster, error) {
	rosters := make([]DepartmentRoster, 0, len(departmentIDs))
	for _, deptID := range departmentIDs {
		roster := DepartmentRoster{DepartmentID: deptID}
		if err := s.DB.QueryRow(ctx, "SELECT head_user_id FROM departments WHERE id = $1", deptID).Scan(&roster.HeadUserID); err != nil {
			return nil, err
		}

		rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE department_id = $1 AND role = $2 ORDER BY id", deptID, auth.RoleStaff)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var staffID int64
			if err := rows.Scan(&staffID); err != nil {
				rows.Close()
				return nil, err
			}
			roster.StaffIDs = append(roster.StaffIDs, staffID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		rosters = append(rosters, roster)
	}
	return rosters, nil
}

func (s *Store) CreateCycle(ctx context.Context, input CycleInput, specs []ReviewSpec) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cycleID int64
	if err := tx.QueryRow(ctx, `
    INSERT INTO review_cycles (name, start_date, end_date, staff_template_id, dept_head_template_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, input.Name, input.StartDate, input.EndDate, input.StaffTemplateID, input.DeptHeadTemplateID).Scan(&cycleID); err != nil {
		return 0, err
	}

	for _, deptID := range input.DepartmentIDs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO cycle_departments (cycle_id, department_id)
      VALUES ($1, $2)
      ON CONFLICT (cycle_id, department_id) DO NOTHING
    `, cycleID, deptID); err != nil {
			return 0, err
		}
	}

	for _, spec := range specs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO reviews (cycle_id, reviewee_id, reviewer_id, template_id, status)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (cycle_id, reviewee_id) DO NOTHING
    `, cycleID, spec.RevieweeID, spec.ReviewerID, spec.TemplateID, StatusPending); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return cycleID, nil
}

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, staff_template_id, dept_head_template_id, created_at
    FROM review_cycles
    ORDER BY start_date DESC, id DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.StaffTemplateID, &c.DeptHeadTemplateID, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (s *Store) ReviewerQueue(ctx context.Context, userID int64) ([]ReviewerQueueItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.status, r.submitted_at,
           u.full_name, u.role,
           d.name,
           rc.name, rc.start_date, rc.end_date,
           rt.name
    FROM reviews r
    JOIN users u ON r.reviewee_id = u.id
    LEFT JOIN departments d ON u.department_id = d.id
    JOIN review_cycles rc ON r.cycle_id = rc.id
    JOIN review_templates rt ON r.template_id = rt.id
    WHERE r.reviewer_id = $1
    ORDER BY r.status, rc.end_date
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReviewerQueueItem
	for rows.Next() {
		var item ReviewerQueueItem
		if err := rows.Scan(&item.ReviewID, &item.Status, &item.SubmittedAt, &item.RevieweeName, &item.RevieweeRole, &item.DepartmentName, &item.CycleName, &item.StartDate, &item.EndDate, &item.TemplateName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) RevieweeQueue(ctx context.Context, userID int64) ([]RevieweeQueueItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.status, r.submitted_at, r.acknowledged_at,
           u.full_name,
           rc.name, rc.start_date, rc.end_date,
           rt.name
    FROM reviews r
    JOIN users u ON r.reviewer_id = u.id
    JOIN review_cycles rc ON r.cycle_id = rc.id
    JOIN review_templates rt ON r.template_id = rt.id
    WHERE r.reviewee_id = $1
    ORDER BY r.status, rc.end_date DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RevieweeQueueItem
	for rows.Next() {
		var item RevieweeQueueItem
		if err := rows.Scan(&item.ReviewID, &item.Status, &item.SubmittedAt, &item.AcknowledgedAt, &item.ReviewerName, &item.CycleName, &item.StartDate, &item.EndDate, &item.TemplateName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ReviewDetail(ctx context.Context, reviewID int64) (Detail, error) {
	var detail Detail
	r := &detail.Review
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.cycle_id, r.reviewee_id, r.reviewer_id, r.template_id, r.status,
           r.overall_comments, r.ai_summary, r.acknowledgement_comments,
           r.submitted_at, r.acknowledged_at,
           reviewer.full_name, reviewee.full_name,
           rc.name, rt.name
    FROM reviews r
    JOIN users reviewer ON r.reviewer_id = reviewer.id
    JOIN users reviewee ON r.reviewee_id = reviewee.id
    JOIN review_cycles rc ON r.cycle_id = rc.id
    JOIN review_templates rt ON r.template_id = rt.id
    WHERE r.id = $1
  `, reviewID).Scan(&r.ID, &r.CycleID, &r.RevieweeID, &r.ReviewerID, &r.TemplateID, &r.Status,
		&r.OverallComments, &r.AISummary, &r.AcknowledgementComments,
		&r.SubmittedAt, &r.AcknowledgedAt,
		&r.ReviewerName, &r.RevieweeName,
		&r.CycleName, &r.TemplateName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, err
	}

	qrows, err := s.DB.Query(ctx, `
    SELECT id, template_id, question_text, question_type, display_order
    FROM template_questions
    WHERE template_id = $1
    ORDER BY display_order
  `, r.TemplateID)
	if err != nil {
		return Detail{}, err
	}
	defer qrows.Close()
	for qrows.Next() {
		var q Question
		if err := qrows.Scan(&q.ID, &q.TemplateID, &q.QuestionText, &q.QuestionType, &q.DisplayOrder); err != nil {
			return Detail{}, err
		}
		detail.Questions = append(detail.Questions, q)
	}
	if err := qrows.Err(); err != nil {
		return Detail{}, err
	}

	arows, err := s.DB.Query(ctx, `
    SELECT id, review_id, question_id, answer_text, answer_rating
    FROM review_answers
    WHERE review_id = $1
    ORDER BY id
  `, reviewID)
	if err != nil {
		return Detail{}, err
	}
	defer arows.Close()
	for arows.Next() {
		var a Answer
		if err := arows.Scan(&a.ID, &a.ReviewID, &a.QuestionID, &a.AnswerText, &a.AnswerRating); err != nil {
			return Detail{}, err
		}
		detail.Answers = append(detail.Answers, a)
	}
	return detail, arows.Err()
}

func (s *Store) ReviewHeader(ctx context.Context, reviewID int64) (header, error) {
	var hdr header
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.status, r.template_id, r.reviewee_id, r.reviewer_id, u.full_name
    FROM reviews r
    JOIN users u ON r.reviewee_id = u.id
    WHERE r.id = $1
  `, reviewID).Scan(&hdr.ID, &hdr.Status, &hdr.TemplateID, &hdr.RevieweeID, &hdr.ReviewerID, &hdr.RevieweeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return header{}, ErrNotFound
	}
	if err != nil {
		return header{}, err
	}
	return hdr, nil
}

func (s *Store) QuestionTypes(ctx context.Context, templateID int64) (map[int64]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, question_type FROM template_questions WHERE template_id = $1", templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := map[int64]string{}
	for rows.Next() {
		var id int64
		var qtype string
		if err := rows.Scan(&id, &qtype); err != nil {
			return nil, err
		}
		types[id] = qtype
	}
	return types, rows.Err()
}

func (s *Store) CompleteReview(ctx context.Context, reviewID int64, overallComments, aiSummary string, answers []AnswerInput) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    UPDATE reviews
    SET status = $2, overall_comments = $3, ai_summary = $4, submitted_at = now()
    WHERE id = $1
  `, reviewID, StatusCompleted, overallComments, aiSummary); err != nil {
		return err
	}

	// A resubmission replaces the previous answer set.
	if _, err := tx.Exec(ctx, "DELETE FROM review_answers WHERE review_id = $1", reviewID); err != nil {
		return err
	}

	for _, answer := range answers {
		text := answer.AnswerText
		if answer.AnswerRating != nil {
			text = nil
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO review_answers (review_id, question_id, answer_text, answer_rating)
      VALUES ($1, $2, $3, $4)
    `, reviewID, answer.QuestionID, text, answer.AnswerRating); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) AcknowledgeReview(ctx context.Context, reviewID int64, comments string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE reviews
    SET status = $2, acknowledgement_comments = $3, acknowledged_at = now()
    WHERE id = $1
  `, reviewID, StatusAcknowledged, comments)
	return err
}

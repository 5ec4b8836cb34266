package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("template not found")

const (
	QuestionTypeRating   = "RatingScale1-5"
	QuestionTypeOpenText = "OpenText"
)

type Template struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Question struct {
	ID           int64  `json:"id"`
	TemplateID   int64  `json:"templateId"`
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	DisplayOrder int    `json:"displayOrder"`
}

type TemplateDetail struct {
	Template  Template   `json:"template"`
	Questions []Question `json:"questions"`
}

type TemplateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type QuestionInput struct {
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	DisplayOrder int    `json:"displayOrder"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.name, t.description,
           (SELECT count(*) FROM template_questions q WHERE q.template_id = t.id),
           t.created_at
    FROM review_templates t
    ORDER BY t.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.QuestionCount, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Service) Get(ctx context.Context, templateID int64) (TemplateDetail, error) {
	var detail TemplateDetail
	t := &detail.Template
	err := s.DB.QueryRow(ctx, `
    SELECT t.id, t.name, t.description,
           (SELECT count(*) FROM template_questions q WHERE q.template_id = t.id),
           t.created_at
    FROM review_templates t
    WHERE t.id = $1
  `, templateID).Scan(&t.ID, &t.Name, &t.Description, &t.QuestionCount, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TemplateDetail{}, ErrNotFound
	}
	if err != nil {
		return TemplateDetail{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, template_id, question_text, question_type, display_order
    FROM template_questions
    WHERE template_id = $1
    ORDER BY display_order
  `, templateID)
	if err != nil {
		return TemplateDetail{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.TemplateID, &q.QuestionText, &q.QuestionType, &q.DisplayOrder); err != nil {
			return TemplateDetail{}, err
		}
		detail.Questions = append(detail.Questions, q)
	}
	return detail, rows.Err()
}

func (s *Service) Create(ctx context.Context, input TemplateInput) (int64, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return 0, &ValidationError{Field: "name", Reason: "is required"}
	}

	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO review_templates (name, description)
    VALUES ($1, $2)
    RETURNING id
  `, input.Name, input.Description).Scan(&id)
	return id, err
}

func (s *Service) AddQuestion(ctx context.Context, templateID int64, input QuestionInput) (int64, error) {
	if err := validateQuestion(&input); err != nil {
		return 0, err
	}

	// Append to the end of the template when no explicit position is given.
	if input.DisplayOrder <= 0 {
		if err := s.DB.QueryRow(ctx, `
      SELECT coalesce(max(display_order), 0) + 1
      FROM template_questions WHERE template_id = $1
    `, templateID).Scan(&input.DisplayOrder); err != nil {
			return 0, err
		}
	}

	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO template_questions (template_id, question_text, question_type, display_order)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, templateID, input.QuestionText, input.QuestionType, input.DisplayOrder).Scan(&id)
	return id, err
}

func (s *Service) DeleteQuestion(ctx context.Context, questionID int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM template_questions WHERE id = $1", questionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template; its questions cascade in the schema.
func (s *Service) Delete(ctx context.Context, templateID int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM review_templates WHERE id = $1", templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func validateQuestion(input *QuestionInput) error {
	input.QuestionText = strings.TrimSpace(input.QuestionText)
	if input.QuestionText == "" {
		return &ValidationError{Field: "questionText", Reason: "is required"}
	}
	if input.QuestionType != QuestionTypeRating && input.QuestionType != QuestionTypeOpenText {
		return &ValidationError{Field: "questionType", Reason: "must be RatingScale1-5 or OpenText"}
	}
	return nil
}

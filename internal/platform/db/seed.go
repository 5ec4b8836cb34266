package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"staffreview/internal/domain/auth"
	"staffreview/internal/platform/config"
)

// Seed provisions the designated HR admin account and, optionally, a pair of
// starter questionnaires so a fresh install can run a cycle immediately.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	if cfg.SeedStarterTemplates {
		if err := ensureStarterTemplates(ctx, pool); err != nil {
			return err
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (full_name, email, role, password_hash, password_set, account_status)
    VALUES ($1, $2, $3, $4, TRUE, 'Active')
    RETURNING id
  `, name, email, auth.RoleHRAdmin, hash).Scan(&id)
}

func ensureStarterTemplates(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM review_templates").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	templates := []struct {
		name        string
		description string
		questions   []struct {
			text  string
			qtype string
		}
	}{
		{
			name:        "Staff Annual Review",
			description: "Standard annual performance review for hospital staff",
			questions: []struct {
				text  string
				qtype string
			}{
				{"Quality of patient care and clinical work", "RatingScale1-5"},
				{"Teamwork and collaboration with colleagues", "RatingScale1-5"},
				{"Punctuality and reliability", "RatingScale1-5"},
				{"What were this staff member's key achievements this period?", "OpenText"},
				{"What areas should this staff member focus on improving?", "OpenText"},
			},
		},
		{
			name:        "Department Head Annual Review",
			description: "Annual leadership review for department heads",
			questions: []struct {
				text  string
				qtype string
			}{
				{"Leadership and team management", "RatingScale1-5"},
				{"Departmental performance against objectives", "RatingScale1-5"},
				{"Communication with hospital administration", "RatingScale1-5"},
				{"Summarize the department's performance under this head", "OpenText"},
			},
		},
	}

	for _, tpl := range templates {
		var templateID int64
		if err := pool.QueryRow(ctx, `
      INSERT INTO review_templates (name, description)
      VALUES ($1, $2)
      RETURNING id
    `, tpl.name, tpl.description).Scan(&templateID); err != nil {
			return err
		}
		for i, q := range tpl.questions {
			if _, err := pool.Exec(ctx, `
        INSERT INTO template_questions (template_id, question_text, question_type, display_order)
        VALUES ($1, $2, $3, $4)
      `, templateID, q.text, q.qtype, i+1); err != nil {
				return err
			}
		}
	}

	return nil
}

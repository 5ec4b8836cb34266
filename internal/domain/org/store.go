package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, d.head_user_id, h.full_name,
           (SELECT count(*) FROM users u WHERE u.department_id = d.id AND u.role = 'Staff')
    FROM departments d
    LEFT JOIN users h ON d.head_user_id = h.id
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.HeadUserID, &d.HeadName, &d.StaffCount); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, input DepartmentInput) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, head_user_id)
    VALUES ($1, $2)
    RETURNING id
  `, input.Name, input.HeadUserID).Scan(&id)
	if isDuplicate(err) {
		return 0, ErrDuplicateDepartment
	}
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, input DepartmentInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $2, head_user_id = $3
    WHERE id = $1
  `, id, input.Name, input.HeadUserID)
	if isDuplicate(err) {
		return ErrDuplicateDepartment
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.full_name, u.email, u.role, u.department_id, d.name,
           u.password_set, u.account_status, u.created_at
    FROM users u
    LEFT JOIN departments d ON u.department_id = d.id
    ORDER BY u.full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.DepartmentID, &u.DepartmentName, &u.PasswordSet, &u.AccountStatus, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.full_name, u.email, u.role, u.department_id, d.name,
           u.password_set, u.account_status, u.created_at
    FROM users u
    LEFT JOIN departments d ON u.department_id = d.id
    WHERE u.id = $1
  `, id).Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.DepartmentID, &u.DepartmentName, &u.PasswordSet, &u.AccountStatus, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) ListDeptHeads(ctx context.Context) ([]DeptHead, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, full_name FROM users
    WHERE role = 'Dept Head' AND account_status <> 'Inactive'
    ORDER BY full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heads []DeptHead
	for rows.Next() {
		var h DeptHead
		if err := rows.Scan(&h.ID, &h.FullName); err != nil {
			return nil, err
		}
		heads = append(heads, h)
	}
	return heads, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, input UserInput) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (full_name, email, role, department_id, password_set, account_status)
    VALUES ($1, $2, $3, $4, FALSE, 'Invited')
    RETURNING id
  `, input.FullName, input.Email, input.Role, input.DepartmentID).Scan(&id)
	if isDuplicate(err) {
		return 0, ErrDuplicateEmail
	}
	return id, err
}

func (s *Store) UpdateUser(ctx context.Context, id int64, input UserInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET full_name = $2, email = $3, role = $4, department_id = $5
    WHERE id = $1
  `, id, input.FullName, input.Email, input.Role, input.DepartmentID)
	if isDuplicate(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

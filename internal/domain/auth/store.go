package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Account struct {
	ID            int64
	FullName      string
	Email         string
	Role          string
	DepartmentID  *int64
	PasswordHash  *string
	PasswordSet   bool
	AccountStatus string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (Account, error) {
	var acct Account
	err := s.DB.QueryRow(ctx, `
    SELECT id, full_name, email, role, department_id, password_hash, password_set, account_status
    FROM users
    WHERE email = $1
  `, email).Scan(&acct.ID, &acct.FullName, &acct.Email, &acct.Role, &acct.DepartmentID, &acct.PasswordHash, &acct.PasswordSet, &acct.AccountStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrUnknownEmail
	}
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (s *Store) Activate(ctx context.Context, email, passwordHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET password_hash = $2, password_set = TRUE, account_status = 'Active'
    WHERE email = $1
  `, email, passwordHash)
	return err
}

package org

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staffreview/internal/domain/auth"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateEmail      = errors.New("a user with that email already exists")
	ErrDuplicateDepartment = errors.New("a department with that name already exists")
)

// ValidationError carries the failing field for the handler's error envelope.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var validRoles = map[string]bool{
	auth.RoleHRAdmin:  true,
	auth.RoleDeptHead: true,
	auth.RoleStaff:    true,
}

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, input DepartmentInput) (int64, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return 0, &ValidationError{Field: "name", Reason: "is required"}
	}
	return s.store.CreateDepartment(ctx, input)
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, input DepartmentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return s.store.UpdateDepartment(ctx, id, input)
}

func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	return s.store.DeleteDepartment(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) ListDeptHeads(ctx context.Context) ([]DeptHead, error) {
	return s.store.ListDeptHeads(ctx)
}

// CreateUser invites a new account. The user activates it later through
// signup, so no password is set here.
func (s *Service) CreateUser(ctx context.Context, input UserInput) (int64, error) {
	if err := validateUserInput(&input); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, input)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, input UserInput) error {
	if err := validateUserInput(&input); err != nil {
		return err
	}
	return s.store.UpdateUser(ctx, id, input)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}

func validateUserInput(input *UserInput) error {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.FullName == "" {
		return &ValidationError{Field: "fullName", Reason: "is required"}
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if !validRoles[input.Role] {
		return &ValidationError{Field: "role", Reason: "must be one of HR Admin, Dept Head, Staff"}
	}
	return nil
}

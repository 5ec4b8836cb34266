package org

import "time"

type Department struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	HeadUserID *int64  `json:"headUserId"`
	HeadName   *string `json:"headName"`
	StaffCount int     `json:"staffCount"`
}

type DepartmentInput struct {
	Name       string `json:"name"`
	HeadUserID *int64 `json:"headUserId"`
}

type User struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	DepartmentID   *int64    `json:"departmentId"`
	DepartmentName *string   `json:"departmentName"`
	PasswordSet    bool      `json:"passwordSet"`
	AccountStatus  string    `json:"accountStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UserInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"departmentId"`
}

// DeptHead is the slim listing used when assigning department heads.
type DeptHead struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

package org

import (
	"errors"
	"testing"
)

func TestValidateUserInput(t *testing.T) {
	cases := []struct {
		name  string
		input UserInput
		field string
	}{
		{"missing name", UserInput{Email: "a@b.c", Role: "Staff"}, "fullName"},
		{"missing email", UserInput{FullName: "A", Role: "Staff"}, "email"},
		{"malformed email", UserInput{FullName: "A", Email: "not-an-email", Role: "Staff"}, "email"},
		{"unknown role", UserInput{FullName: "A", Email: "a@b.c", Role: "Surgeon"}, "role"},
	}

	for _, tc := range cases {
		err := validateUserInput(&tc.input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if validationErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, validationErr.Field)
		}
	}
}

func TestValidateUserInputNormalizes(t *testing.T) {
	input := UserInput{FullName: "  Jane Mwangi  ", Email: " Jane.Mwangi@Hospital.org ", Role: "Dept Head"}
	if err := validateUserInput(&input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.FullName != "Jane Mwangi" {
		t.Fatalf("expected trimmed name, got %q", input.FullName)
	}
	if input.Email != "jane.mwangi@hospital.org" {
		t.Fatalf("expected lower-cased email, got %q", input.Email)
	}
}

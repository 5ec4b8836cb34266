package templates

import (
	"errors"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name  string
		input QuestionInput
		field string
	}{
		{"missing text", QuestionInput{QuestionType: QuestionTypeRating}, "questionText"},
		{"blank text", QuestionInput{QuestionText: "   ", QuestionType: QuestionTypeOpenText}, "questionText"},
		{"unknown type", QuestionInput{QuestionText: "How was the year?", QuestionType: "MultipleChoice"}, "questionType"},
	}

	for _, tc := range cases {
		err := validateQuestion(&tc.input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if validationErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, validationErr.Field)
		}
	}

	valid := QuestionInput{QuestionText: " Rate teamwork. ", QuestionType: QuestionTypeRating}
	if err := validateQuestion(&valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid.QuestionText != "Rate teamwork." {
		t.Fatalf("expected trimmed text, got %q", valid.QuestionText)
	}
}

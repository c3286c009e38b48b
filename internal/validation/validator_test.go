package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

type sampleRequest struct {
	Topic      string   `json:"topic" validate:"required,max=200"`
	Language   string   `json:"language,omitempty" validate:"omitempty,min=2,max=5"`
	MaxResults int      `json:"max_results" validate:"gte=0,lte=20"`
	Level      string   `json:"nivel_educativo" validate:"omitempty,oneof=secundaria preparatoria universidad posgrado"`
	Average    *float64 `json:"promedio" validate:"omitempty,gte=0,lte=10"`
}

func TestValidator_Singleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("Validator() should return the same instance")
	}
}

func TestStruct_Valid(t *testing.T) {
	avg := 8.5
	req := sampleRequest{Topic: "integrales", Language: "es", MaxResults: 5, Level: "universidad", Average: &avg}
	if err := Struct(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_Messages(t *testing.T) {
	avg := 11.0
	tests := []struct {
		name string
		req  sampleRequest
		want string
	}{
		{"required", sampleRequest{}, "topic is required"},
		{"lte", sampleRequest{Topic: "x", MaxResults: 21}, "max_results must be less than or equal to 20"},
		{"string min", sampleRequest{Topic: "x", Language: "e"}, "language must be at least 2 characters"},
		{"oneof", sampleRequest{Topic: "x", Level: "kinder"}, "nivel_educativo must be one of: secundaria preparatoria universidad posgrado"},
		{"pointer", sampleRequest{Topic: "x", Average: &avg}, "promedio must be less than or equal to 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected error to unwrap to ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestStruct_MultipleFields(t *testing.T) {
	err := Struct(&sampleRequest{MaxResults: -1})

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(verr.Fields), verr)
	}
	if verr.Fields[0].Field != "topic" || verr.Fields[1].Field != "max_results" {
		t.Errorf("unexpected fields: %+v", verr.Fields)
	}
}

func TestStruct_NotAStruct(t *testing.T) {
	if err := Struct("nope"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for non-struct input, got %v", err)
	}
}

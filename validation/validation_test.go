package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/voxkit/errors"
)

type chunking struct {
	Window float64 `mapstructure:"window" validate:"gt=0"`
	Stride float64 `mapstructure:"stride" validate:"gt=0,ltefield=Window"`
}

type request struct {
	Backend   string   `json:"backend" validate:"required,oneof=whisper faster"`
	Threshold float64  `json:"diarize_threshold" validate:"gt=0,lte=2"`
	Speakers  int      `form:"max_speakers" validate:"gte=0,lte=32"`
	URL       string   `json:"url" validate:"omitempty,url"`
	Chunking  chunking `mapstructure:"chunking"`
}

func valid() request {
	return request{Backend: "whisper", Threshold: 0.35, Chunking: chunking{Window: 1.5, Stride: 0.5}}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*request)
		field  string
		msg    string
	}{
		{"required", func(r *request) { r.Backend = "" }, "backend", "is required"},
		{"oneof", func(r *request) { r.Backend = "vosk" }, "backend", "must be one of"},
		{"gt", func(r *request) { r.Threshold = 0 }, "diarize_threshold", "greater than 0"},
		{"lte", func(r *request) { r.Speakers = 40 }, "max_speakers", "at most 32"},
		{"url", func(r *request) { r.URL = "not a url" }, "url", "valid URL"},
		{"nested", func(r *request) { r.Chunking.Window = 0; r.Chunking.Stride = 0 }, "chunking.window", "greater than 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.mutate(&r)
			err := Validate(r)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
			}
			fields, _ := appErr.Details["fields"].([]FieldError)
			found := false
			for _, f := range fields {
				if f.Field == tc.field && strings.Contains(f.Message, tc.msg) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %q with %q, got %+v", tc.field, tc.msg, fields)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"MaxSpeakers": "max_speakers",
		"Window":      "window",
		"url":         "url",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

package validation

import (
	"strings"
	"testing"

	"github.com/datakit-go/datakit/errors"
)

type batchConfig struct {
	Size   int `json:"batch_size" validate:"gt=0"`
	Stride int `json:"stride" validate:"gte=1"`
}

func TestValidate_Passes(t *testing.T) {
	if err := Validate(&batchConfig{Size: 4, Stride: 1}); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_ReportsInvalidConfig(t *testing.T) {
	err := Validate(&batchConfig{Size: 0, Stride: 1})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := errors.CodeOf(err), errors.ErrCodeInvalidConfig; got != want {
		t.Errorf("CodeOf = %v, want %v", got, want)
	}
	if errors.IsRecoverable(err) {
		t.Error("validation error reported as recoverable")
	}
}

func TestValidate_UsesJSONTagName(t *testing.T) {
	err := Validate(&batchConfig{Size: 0, Stride: 1})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := err.Error(), "batch_size must be greater than 0"; !strings.Contains(got, want) {
		t.Errorf("message = %q, want it to contain %q", got, want)
	}
}

func TestValidate_FallsBackToSnakeCase(t *testing.T) {
	type shuffleConfig struct {
		BufferSize int `validate:"gte=2"`
	}
	err := Validate(&shuffleConfig{BufferSize: 1})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := err.Error(), "buffer_size must be at least 2"; !strings.Contains(got, want) {
		t.Errorf("message = %q, want it to contain %q", got, want)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	err := Validate(&batchConfig{Size: -1, Stride: 0})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "batch_size") || !strings.Contains(msg, "stride") {
		t.Errorf("message = %q, want both fields reported", msg)
	}

	structured, ok := errors.AsError(err)
	if !ok {
		t.Fatalf("error %T is not structured", err)
	}
	fields, ok := structured.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("fields detail = %T, want []FieldError", structured.Details["fields"])
	}
	if got, want := len(fields), 2; got != want {
		t.Fatalf("len(fields) = %d, want %d", got, want)
	}
	if got, want := fields[0].Field, "batch_size"; got != want {
		t.Errorf("fields[0].Field = %q, want %q", got, want)
	}
	if got, want := fields[0].Message, "must be greater than 0"; got != want {
		t.Errorf("fields[0].Message = %q, want %q", got, want)
	}
}

func TestValidate_RequiredTag(t *testing.T) {
	type sourceConfig struct {
		Path string `json:"path" validate:"required"`
	}
	err := Validate(&sourceConfig{})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := err.Error(), "path is required"; !strings.Contains(got, want) {
		t.Errorf("message = %q, want it to contain %q", got, want)
	}
}

func TestValidate_OneOfTag(t *testing.T) {
	type logConfig struct {
		Format string `json:"format" validate:"oneof=json console"`
	}
	err := Validate(&logConfig{Format: "xml"})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := err.Error(), "format must be one of json console"; !strings.Contains(got, want) {
		t.Errorf("message = %q, want it to contain %q", got, want)
	}
}

func TestValidate_UnmappedTag(t *testing.T) {
	type idConfig struct {
		ID string `json:"id" validate:"uuid"`
	}
	err := Validate(&idConfig{ID: "not-a-uuid"})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if got, want := err.Error(), "id must satisfy uuid"; !strings.Contains(got, want) {
		t.Errorf("message = %q, want it to contain %q", got, want)
	}
}

func TestValidate_BoundsTags(t *testing.T) {
	type rateConfig struct {
		Rate float64 `json:"rate" validate:"lte=1"`
		Jobs int     `json:"jobs" validate:"lt=100"`
	}
	err := Validate(&rateConfig{Rate: 1.5, Jobs: 100})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	if want := "rate must be at most 1"; !strings.Contains(msg, want) {
		t.Errorf("message = %q, want it to contain %q", msg, want)
	}
	if want := "jobs must be less than 100"; !strings.Contains(msg, want) {
		t.Errorf("message = %q, want it to contain %q", msg, want)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Size", "size"},
		{"BufferSize", "buffer_size"},
		{"NumParallelCalls", "num_parallel_calls"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		if got := snakeCase(tt.in); got != tt.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"09:30", "9:30", "0930", "23:59", "18:30:00"}
	invalid := []string{"24:00", "9", "noon", "", "12:5"}
	for _, s := range valid {
		if !IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestIsInRange(t *testing.T) {
	if !IsInRange(1, 1, 31) || !IsInRange(31, 1, 31) {
		t.Errorf("IsInRange bounds should be inclusive")
	}
	if IsInRange(0, 1, 31) || IsInRange(32, 1, 31) {
		t.Errorf("IsInRange accepted an out of range value")
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employees[0].id", Message: "id is required"},
		{Field: "employees[1].name", Message: "name is required"},
	}
	got := errs.Error()
	want := "employees[0].id: id is required; employees[1].name: name is required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employees", Message: "at least one employee is required"},
		{Field: "period.month", Message: "month must be between 1 and 12"},
	}
	got := errs.ToMap()
	if len(got) != 2 {
		t.Errorf("ValidationErrors.ToMap() length = %d, want 2", len(got))
	}
	if got["period.month"] != "month must be between 1 and 12" {
		t.Errorf("ValidationErrors.ToMap()[period.month] = %q", got["period.month"])
	}
}

func TestValidationErrors_Fields(t *testing.T) {
	errs := ValidationErrors{{Field: "a"}, {Field: "b"}}
	fields := errs.Fields()
	if len(fields) != 2 || fields[0] != "a" || fields[1] != "b" {
		t.Errorf("ValidationErrors.Fields() = %v", fields)
	}
}

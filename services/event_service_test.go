package services

import (
	"testing"
)

func validEventInput() EventInput {
	return EventInput{
		Title:   "อบรมการใช้งานระบบ",
		Detail:  "ห้องประชุมใหญ่",
		StartAt: "2025-03-01 09:00:00",
		EndAt:   "2025-03-01 16:00:00",
	}
}

func TestValidateEventValid(t *testing.T) {
	event, ve := validateEventInput(validEventInput())
	if ve != nil {
		t.Fatalf("unexpected validation errors: %v", ve)
	}
	if event.Title != "อบรมการใช้งานระบบ" {
		t.Fatalf("unexpected title %q", event.Title)
	}
	if event.Detail == nil || *event.Detail != "ห้องประชุมใหญ่" {
		t.Fatalf("detail not normalized: %v", event.Detail)
	}
	if event.StartAt.IsZero() || event.EndAt.IsZero() {
		t.Fatalf("expected parsed period, got %+v", event)
	}
}

func TestValidateEventRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EventInput)
		field  string
		want   string
	}{
		{"missing title", func(in *EventInput) { in.Title = "" }, "title", "title is required"},
		{"missing start", func(in *EventInput) { in.StartAt = "" }, "start_at", "start_at is required"},
		{"missing end", func(in *EventInput) { in.EndAt = "" }, "end_at", "end_at is required"},
		{"malformed start", func(in *EventInput) { in.StartAt = "2025-03-01" }, "start_at", "start_at must match YYYY-MM-DD HH:MM:SS"},
		{"malformed end", func(in *EventInput) { in.EndAt = "2025-03-01" }, "end_at", "end_at must match YYYY-MM-DD HH:MM:SS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validEventInput()
			tc.mutate(&in)
			_, ve := validateEventInput(in)
			if ve == nil {
				t.Fatalf("expected validation error for %s", tc.field)
			}
			if got := ve[tc.field]; got != tc.want {
				t.Fatalf("field %s: got %q, want %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestValidateEventEndMustBeAfterStart(t *testing.T) {
	in := validEventInput()
	in.EndAt = in.StartAt
	_, ve := validateEventInput(in)
	if ve == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := ve["end_at"]; !ok {
		t.Fatalf("expected error on end_at, got %v", ve)
	}
}

func TestValidateEventDetailOptional(t *testing.T) {
	in := validEventInput()
	in.Detail = "   "
	event, ve := validateEventInput(in)
	if ve != nil {
		t.Fatalf("unexpected validation errors: %v", ve)
	}
	if event.Detail != nil {
		t.Fatalf("blank detail must stay nil, got %v", event.Detail)
	}
}

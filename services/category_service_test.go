package services

import (
	"errors"
	"testing"

	"service-request-api/models"
)

func TestResolveCategoryDesiredID(t *testing.T) {
	catalog := []models.NotificationCategory{
		{CategoryID: 1, Code: "meeting_room", Label: "จองห้องประชุม"},
		{CategoryID: 2, Code: "repair", Label: "แจ้งซ่อม"},
		{CategoryID: 3, Code: "other", Label: "คำขออื่นๆ"},
	}

	cases := map[string]int{
		models.RequestTypeConference: 1,
		models.RequestTypeRepair:     2,
		models.RequestTypeOther:      3,
	}
	for requestType, want := range cases {
		got, err := resolveCategoryFrom(catalog, requestType)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", requestType, err)
		}
		if got != want {
			t.Fatalf("%s: got category %d, want %d", requestType, got, want)
		}
	}
}

func TestResolveCategoryFallbackByCode(t *testing.T) {
	// The desired ids are gone; a reseeded catalog kept the codes under
	// new ids, including a historical spelling variant.
	catalog := []models.NotificationCategory{
		{CategoryID: 11, Code: "meetingroom", Label: "จองห้องประชุม"},
		{CategoryID: 12, Code: "repair_request", Label: "แจ้งซ่อม"},
		{CategoryID: 13, Code: "general_request", Label: "คำขออื่นๆ"},
	}

	got, err := resolveCategoryFrom(catalog, models.RequestTypeConference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 11 {
		t.Fatalf("got category %d, want 11", got)
	}

	got, err = resolveCategoryFrom(catalog, models.RequestTypeRepair)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("got category %d, want 12", got)
	}
}

func TestResolveCategoryFallbackOrder(t *testing.T) {
	// Both fallback codes present: the first code in the chain wins.
	catalog := []models.NotificationCategory{
		{CategoryID: 20, Code: "meetingroom"},
		{CategoryID: 21, Code: "meeting_room"},
	}

	got, err := resolveCategoryFrom(catalog, models.RequestTypeConference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 21 {
		t.Fatalf("got category %d, want 21 (meeting_room listed first)", got)
	}
}

func TestResolveCategoryConferenceLegacyID(t *testing.T) {
	catalog := []models.NotificationCategory{
		{CategoryID: 6, Code: "room_booking_legacy"},
	}

	got, err := resolveCategoryFrom(catalog, models.RequestTypeConference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 6 {
		t.Fatalf("got category %d, want legacy id 6", got)
	}

	// The legacy id only applies to conference requests.
	if _, err := resolveCategoryFrom(catalog, models.RequestTypeRepair); !errors.Is(err, ErrCategoryUnresolved) {
		t.Fatalf("expected ErrCategoryUnresolved for repair, got %v", err)
	}
}

func TestResolveCategoryUnresolved(t *testing.T) {
	_, err := resolveCategoryFrom(nil, models.RequestTypeOther)
	if !errors.Is(err, ErrCategoryUnresolved) {
		t.Fatalf("expected ErrCategoryUnresolved, got %v", err)
	}

	_, err = resolveCategoryFrom([]models.NotificationCategory{{CategoryID: 1, Code: "meeting_room"}}, "banner")
	if !errors.Is(err, ErrCategoryUnresolved) {
		t.Fatalf("expected ErrCategoryUnresolved for unknown type, got %v", err)
	}
}

package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"service-request-api/models"
	"service-request-api/utils"
)

// eventCategoryCodes is the ordered lookup chain for the scheduled
// event notification category.
var eventCategoryCodes = []string{"event", "scheduled_event"}

// EventInput is the raw field set for a scheduled event.
type EventInput struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

func validateEventInput(in EventInput) (models.ScheduledEvent, ValidationErrors) {
	ve := ValidationErrors{}
	event := models.ScheduledEvent{Title: utils.SanitizeInput(in.Title)}

	if event.Title == "" {
		ve["title"] = "title is required"
	}
	if detail := utils.SanitizeInput(in.Detail); detail != "" {
		event.Detail = &detail
	}

	var start, end time.Time
	var okStart, okEnd bool
	if in.StartAt == "" {
		ve["start_at"] = "start_at is required"
	} else if start, okStart = utils.ParseDateTime(in.StartAt); !okStart {
		ve["start_at"] = "start_at must match YYYY-MM-DD HH:MM:SS"
	}
	if in.EndAt == "" {
		ve["end_at"] = "end_at is required"
	} else if end, okEnd = utils.ParseDateTime(in.EndAt); !okEnd {
		ve["end_at"] = "end_at must match YYYY-MM-DD HH:MM:SS"
	}
	if okStart && okEnd && !end.After(start) {
		ve["end_at"] = "end_at must be later than start_at"
	}
	event.StartAt = start
	event.EndAt = end

	if len(ve) > 0 {
		return models.ScheduledEvent{}, ve
	}
	return event, nil
}

func resolveEventCategory(tx *gorm.DB) (int, error) {
	var catalog []models.NotificationCategory
	if err := tx.Raw(`SELECT category_id, code, label FROM notification_categories`).
		Scan(&catalog).Error; err != nil {
		return 0, fmt.Errorf("failed to load category catalog: %w", err)
	}

	byCode := make(map[string]int, len(catalog))
	for _, cat := range catalog {
		if _, exists := byCode[cat.Code]; !exists {
			byCode[cat.Code] = cat.CategoryID
		}
	}
	for _, code := range eventCategoryCodes {
		if id, ok := byCode[code]; ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("no event category: %w", ErrCategoryUnresolved)
}

// EventService creates scheduled events together with their
// notification, mirroring the request intake pipeline.
type EventService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewEventService(db *gorm.DB, dispatcher *Dispatcher) *EventService {
	return &EventService{db: db, dispatcher: dispatcher}
}

// Create inserts the event and its notification in one transaction,
// then dispatches best-effort after commit.
func (s *EventService) Create(createdBy int, in EventInput) (*models.ScheduledEvent, *DispatchReport, ValidationErrors, error) {
	event, ve := validateEventInput(in)
	if ve != nil {
		return nil, nil, ve, nil
	}

	now := time.Now()
	event.CreatedBy = createdBy
	event.CreateAt = now

	var categoryID int
	var message string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveEventCategory(tx)
		if err != nil {
			return err
		}
		categoryID = resolved

		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		message = fmt.Sprintf("กิจกรรมใหม่: %s (%s)", event.Title, utils.FormatThaiDateTime(event.StartAt))
		notification := models.Notification{
			EventID:    &event.EventID,
			CategoryID: categoryID,
			Message:    message,
			CreateAt:   now,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	report := s.dispatcher.Dispatch(categoryID, message)
	return &event, &report, nil, nil
}

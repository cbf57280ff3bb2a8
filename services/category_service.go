package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"service-request-api/models"
)

// ErrCategoryUnresolved means neither the desired category nor any of
// its fallbacks exist in the catalog. Request creation must abort on
// it; a request always carries a category.
var ErrCategoryUnresolved = errors.New("notification category unresolved")

// categoryRule maps a request type to its desired category id plus the
// ordered fallback chain used when the catalog was renamed or reseeded.
// The order is part of the contract; do not sort.
type categoryRule struct {
	requestType   string
	desiredID     int
	fallbackCodes []string
	legacyID      int // 0 = no legacy fallback
}

var categoryRules = []categoryRule{
	{
		requestType:   models.RequestTypeConference,
		desiredID:     1,
		fallbackCodes: []string{"meeting_room", "meetingroom", "conference"},
		legacyID:      6,
	},
	{
		requestType:   models.RequestTypeRepair,
		desiredID:     2,
		fallbackCodes: []string{"repair", "repair_request"},
	},
	{
		requestType:   models.RequestTypeOther,
		desiredID:     3,
		fallbackCodes: []string{"other", "general_request"},
	},
}

// resolveCategoryFrom walks the fallback chain against an in-memory
// catalog snapshot: desired id, then fallback codes in order, then the
// legacy id where one exists.
func resolveCategoryFrom(catalog []models.NotificationCategory, requestType string) (int, error) {
	var rule *categoryRule
	for i := range categoryRules {
		if categoryRules[i].requestType == requestType {
			rule = &categoryRules[i]
			break
		}
	}
	if rule == nil {
		return 0, fmt.Errorf("unknown request type %q: %w", requestType, ErrCategoryUnresolved)
	}

	byID := make(map[int]bool, len(catalog))
	byCode := make(map[string]int, len(catalog))
	for _, cat := range catalog {
		byID[cat.CategoryID] = true
		code := strings.ToLower(strings.TrimSpace(cat.Code))
		if code == "" {
			continue
		}
		if _, exists := byCode[code]; !exists {
			byCode[code] = cat.CategoryID
		}
	}

	if byID[rule.desiredID] {
		return rule.desiredID, nil
	}

	for _, code := range rule.fallbackCodes {
		if id, ok := byCode[code]; ok {
			return id, nil
		}
	}

	if rule.legacyID != 0 && byID[rule.legacyID] {
		return rule.legacyID, nil
	}

	return 0, fmt.Errorf("no category for request type %q: %w", requestType, ErrCategoryUnresolved)
}

// ResolveCategory loads the catalog and resolves the category id for a
// request type. Pass the transaction handle so the lookup shares the
// creating transaction.
func ResolveCategory(db *gorm.DB, requestType string) (int, error) {
	var catalog []models.NotificationCategory
	if err := db.Raw(`SELECT category_id, code, label FROM notification_categories`).
		Scan(&catalog).Error; err != nil {
		return 0, fmt.Errorf("failed to load category catalog: %w", err)
	}
	return resolveCategoryFrom(catalog, requestType)
}

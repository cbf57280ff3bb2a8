package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"service-request-api/config"
)

// DispatchError records one recipient's failed delivery. Dispatch
// itself never fails; callers inspect the report.
type DispatchError struct {
	UserID int    `json:"user_id"`
	Reason string `json:"reason"`
}

// DispatchReport summarizes one fan-out.
type DispatchReport struct {
	Recipients     int             `json:"recipients"`
	SentViaGateway int             `json:"sent_via_gateway"`
	Skipped        int             `json:"skipped"`
	Errors         []DispatchError `json:"errors"`
}

type dispatchRecipient struct {
	UserID     int     `gorm:"column:user_id"`
	RoleID     int     `gorm:"column:role_id"`
	LineUserID *string `gorm:"column:line_user_id"`
}

// Dispatcher fans a notification message out to every staff member
// opted in to a category, across their enabled channels. Runs strictly
// after the creating transaction has committed.
type Dispatcher struct {
	db      *gorm.DB
	gateway LineGateway
	cfg     *config.AppConfig
}

func NewDispatcher(db *gorm.DB, gateway LineGateway, cfg *config.AppConfig) *Dispatcher {
	return &Dispatcher{db: db, gateway: gateway, cfg: cfg}
}

// Dispatch delivers message to every enabled recipient of categoryID.
// Recipients are processed sequentially in load order; one recipient's
// failure never aborts the rest. Each recipient gets at most one
// delivery attempt - there is no retry and no queue.
func (d *Dispatcher) Dispatch(categoryID int, message string) DispatchReport {
	report := DispatchReport{Errors: []DispatchError{}}

	var recipients []dispatchRecipient
	if err := d.db.Raw(
		`SELECT u.user_id, u.role_id, u.line_user_id
		 FROM category_recipients cr
		 JOIN users u ON u.user_id = cr.user_id
		 WHERE cr.category_id = ? AND cr.enabled = 1 AND u.delete_at IS NULL
		 ORDER BY cr.id`,
		categoryID,
	).Scan(&recipients).Error; err != nil {
		log.Printf("dispatch: failed to load recipients for category %d: %v", categoryID, err)
		return report
	}

	report.Recipients = len(recipients)

	for _, r := range recipients {
		if err := EnsureChannelDefaults(d.db, d.cfg, r.UserID, r.RoleID); err != nil {
			report.Errors = append(report.Errors, DispatchError{UserID: r.UserID, Reason: err.Error()})
			continue
		}

		channels, err := EnabledChannels(d.db, r.UserID)
		if err != nil {
			report.Errors = append(report.Errors, DispatchError{UserID: r.UserID, Reason: err.Error()})
			continue
		}

		for _, channel := range channels {
			switch channel {
			case ChannelWeb:
				// Nothing to send: the notification row already feeds
				// the in-app list for this recipient.
			case ChannelLine:
				if r.LineUserID == nil || *r.LineUserID == "" {
					report.Skipped++
					continue
				}
				resp, err := d.gateway.PushMessage(*r.LineUserID, message)
				if err != nil {
					report.Errors = append(report.Errors, DispatchError{
						UserID: r.UserID,
						Reason: err.Error(),
					})
					continue
				}
				if !resp.OK() {
					report.Errors = append(report.Errors, DispatchError{
						UserID: r.UserID,
						Reason: fmt.Sprintf("gateway returned status %d: %s", resp.Status, resp.Body),
					})
					continue
				}
				report.SentViaGateway++
			}
		}
	}

	if len(report.Errors) > 0 {
		log.Printf("dispatch: category %d delivered %d/%d via gateway, %d skipped, %d errors",
			categoryID, report.SentViaGateway, report.Recipients, report.Skipped, len(report.Errors))
	}
	return report
}

// UpdateCategorySubscription upserts one category opt-in flag for a user.
func UpdateCategorySubscription(db *gorm.DB, userID, categoryID int, enabled bool) error {
	var exists int64
	if err := db.Raw(`SELECT COUNT(*) FROM notification_categories WHERE category_id = ?`, categoryID).
		Scan(&exists).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if exists == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Exec(
		`INSERT INTO category_recipients (category_id, user_id, enabled) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE enabled = VALUES(enabled)`,
		categoryID, userID, enabled,
	).Error; err != nil {
		return fmt.Errorf("failed to update category subscription: %w", err)
	}
	return nil
}

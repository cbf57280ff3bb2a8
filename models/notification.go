package models

import "time"

// NotificationCategory is static catalog data; rows are seeded, never
// edited by the application.
type NotificationCategory struct {
	CategoryID int        `gorm:"primaryKey;column:category_id" json:"category_id"`
	Code       string     `gorm:"column:code;unique" json:"code"`
	Label      string     `gorm:"column:label" json:"label"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
}

// CategoryRecipient marks a staff member as opted in to a category.
type CategoryRecipient struct {
	ID         int  `gorm:"primaryKey;column:id" json:"id"`
	CategoryID int  `gorm:"column:category_id" json:"category_id"`
	UserID     int  `gorm:"column:user_id" json:"user_id"`
	Enabled    bool `gorm:"column:enabled" json:"enabled"`
}

// ChannelPreference is a per-user delivery-channel flag (web|line).
// The line channel can never be disabled; writes coerce it to enabled.
type ChannelPreference struct {
	ID      int    `gorm:"primaryKey;column:id" json:"id"`
	UserID  int    `gorm:"column:user_id" json:"user_id"`
	Channel string `gorm:"column:channel" json:"channel"` // web|line
	Enabled bool   `gorm:"column:enabled" json:"enabled"`
}

// Notification is one fired event, linked to a request or a scheduled
// event. Rows are written once at creation time and never updated.
type Notification struct {
	NotificationID int       `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	RequestID      *int      `gorm:"column:request_id" json:"request_id,omitempty"`
	EventID        *int      `gorm:"column:event_id" json:"event_id,omitempty"`
	CategoryID     int       `gorm:"column:category_id" json:"category_id"`
	Message        string    `gorm:"column:message" json:"message"`
	CreateAt       time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (NotificationCategory) TableName() string { return "notification_categories" }

func (CategoryRecipient) TableName() string { return "category_recipients" }

func (ChannelPreference) TableName() string { return "channel_preferences" }

func (Notification) TableName() string { return "notifications" }

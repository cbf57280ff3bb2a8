package services

import (
	"fmt"

	"gorm.io/gorm"

	"service-request-api/config"
	"service-request-api/models"
)

// Channel names
const (
	ChannelWeb  = "web"
	ChannelLine = "line"
)

// defaultPreferenceRows builds the bootstrap row set for a user. The
// web default comes from configuration per role; line is always on.
func defaultPreferenceRows(cfg *config.AppConfig, userID, roleID int) []models.ChannelPreference {
	return []models.ChannelPreference{
		{UserID: userID, Channel: ChannelWeb, Enabled: cfg.WebEnabledByDefault(roleID)},
		{UserID: userID, Channel: ChannelLine, Enabled: true},
	}
}

// EnsureChannelDefaults bootstraps the user's channel preferences from
// their role when none exist yet. Idempotent: existing rows are left
// untouched. A concurrent bootstrap for the same user converges on the
// same default set.
func EnsureChannelDefaults(db *gorm.DB, cfg *config.AppConfig, userID, roleID int) error {
	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM channel_preferences WHERE user_id = ?`, userID).
		Scan(&count).Error; err != nil {
		return fmt.Errorf("failed to count channel preferences: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := defaultPreferenceRows(cfg, userID, roleID)
	if err := db.Exec(
		`INSERT IGNORE INTO channel_preferences (user_id, channel, enabled) VALUES (?, ?, ?), (?, ?, ?)`,
		rows[0].UserID, rows[0].Channel, rows[0].Enabled,
		rows[1].UserID, rows[1].Channel, rows[1].Enabled,
	).Error; err != nil {
		return fmt.Errorf("failed to bootstrap channel preferences: %w", err)
	}
	return nil
}

// EnabledChannels returns the channel names the user has enabled.
func EnabledChannels(db *gorm.DB, userID int) ([]string, error) {
	var channels []string
	if err := db.Raw(`SELECT channel FROM channel_preferences WHERE user_id = ? AND enabled = 1 ORDER BY channel`, userID).
		Scan(&channels).Error; err != nil {
		return nil, fmt.Errorf("failed to load enabled channels: %w", err)
	}
	return channels, nil
}

// coercePreference applies the channel policy to a requested flag. The
// line channel cannot be disabled.
func coercePreference(channel string, enabled bool) bool {
	if channel == ChannelLine {
		return true
	}
	return enabled
}

// UpdateChannelPreference upserts one channel flag for a user, subject
// to the line-always-on policy.
func UpdateChannelPreference(db *gorm.DB, userID int, channel string, enabled bool) error {
	if channel != ChannelWeb && channel != ChannelLine {
		return fmt.Errorf("unknown channel %q", channel)
	}

	enabled = coercePreference(channel, enabled)
	if err := db.Exec(
		`INSERT INTO channel_preferences (user_id, channel, enabled) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE enabled = VALUES(enabled)`,
		userID, channel, enabled,
	).Error; err != nil {
		return fmt.Errorf("failed to update channel preference: %w", err)
	}
	return nil
}

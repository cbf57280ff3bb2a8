package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"service-request-api/models"
	"service-request-api/services"
)

type notificationFeedItem struct {
	NotificationID int       `json:"notification_id" gorm:"column:notification_id"`
	RequestID      *int      `json:"request_id" gorm:"column:request_id"`
	EventID        *int      `json:"event_id" gorm:"column:event_id"`
	CategoryID     int       `json:"category_id" gorm:"column:category_id"`
	CategoryCode   string    `json:"category_code" gorm:"column:category_code"`
	CategoryLabel  string    `json:"category_label" gorm:"column:category_label"`
	Message        string    `json:"message" gorm:"column:message"`
	CreateAt       time.Time `json:"create_at" gorm:"column:create_at"`
}

// feedVisibilitySQL restricts notifications to categories the user is
// opted in to, and only when their web channel is enabled.
const feedVisibilitySQL = `
	FROM notifications n
	JOIN notification_categories nc ON nc.category_id = n.category_id
	JOIN category_recipients cr ON cr.category_id = n.category_id
		AND cr.user_id = ? AND cr.enabled = 1
	WHERE EXISTS (
		SELECT 1 FROM channel_preferences cp
		WHERE cp.user_id = ? AND cp.channel = 'web' AND cp.enabled = 1
	)`

// GetNotifications returns the in-app notification feed for the current
// user, newest first.
func GetNotifications(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	if err := services.EnsureChannelDefaults(getDB(), appConfig, userID, roleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page := 1
	limit := 20
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := (page - 1) * limit

	var items []notificationFeedItem
	if err := getDB().Raw(
		`SELECT n.notification_id, n.request_id, n.event_id, n.category_id,
			nc.code AS category_code, nc.label AS category_label,
			n.message, n.create_at`+feedVisibilitySQL+`
		ORDER BY n.create_at DESC, n.notification_id DESC
		LIMIT ? OFFSET ?`,
		userID, userID, limit, offset,
	).Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if items == nil {
		items = []notificationFeedItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"page":          page,
		"limit":         limit,
	})
}

// GetNotificationCounter returns the feed size for badge display.
func GetNotificationCounter(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	if err := services.EnsureChannelDefaults(getDB(), appConfig, userID, roleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := getDB().Raw(`SELECT COUNT(*)`+feedVisibilitySQL, userID, userID).
		Scan(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetChannelPreferences returns the current user's channel flags,
// bootstrapping defaults on first access.
func GetChannelPreferences(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	if err := services.EnsureChannelDefaults(getDB(), appConfig, userID, roleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var prefs []models.ChannelPreference
	if err := getDB().Where("user_id = ?", userID).
		Order("channel").Find(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

type updateChannelPreferenceReq struct {
	Channel string `json:"channel" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// UpdateChannelPreference sets one channel flag. The line channel is
// always stored enabled regardless of the requested value.
func UpdateChannelPreference(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	var req updateChannelPreferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel := strings.TrimSpace(strings.ToLower(req.Channel))

	if err := services.EnsureChannelDefaults(getDB(), appConfig, userID, roleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := services.UpdateChannelPreference(getDB(), userID, channel, *req.Enabled); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var prefs []models.ChannelPreference
	if err := getDB().Where("user_id = ?", userID).
		Order("channel").Find(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// GetNotificationCategories lists the category catalog together with
// the current user's opt-in flags.
func GetNotificationCategories(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	type categoryRow struct {
		CategoryID int    `json:"category_id" gorm:"column:category_id"`
		Code       string `json:"code" gorm:"column:code"`
		Label      string `json:"label" gorm:"column:label"`
		Subscribed bool   `json:"subscribed" gorm:"column:subscribed"`
	}

	var rows []categoryRow
	if err := getDB().Raw(
		`SELECT nc.category_id, nc.code, nc.label,
			COALESCE(cr.enabled, 0) AS subscribed
		 FROM notification_categories nc
		 LEFT JOIN category_recipients cr
			ON cr.category_id = nc.category_id AND cr.user_id = ?
		 ORDER BY nc.category_id`,
		userID,
	).Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if rows == nil {
		rows = []categoryRow{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": rows})
}

type updateSubscriptionReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UpdateCategorySubscription opts the current user in or out of one
// notification category.
func UpdateCategorySubscription(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	categoryID, err := strconv.Atoi(c.Param("category_id"))
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req updateSubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.UpdateCategorySubscription(getDB(), userID, categoryID, *req.Enabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"service-request-api/models"
	"service-request-api/services"
)

// CreateEvent records a scheduled event and notifies the event
// category's recipients.
func CreateEvent(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var in services.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, report, ve, err := eventService.Create(userID, in)
	if ve != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve})
		return
	}
	if err != nil {
		if errors.Is(err, services.ErrCategoryUnresolved) {
			log.Printf("create event: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "notification category catalog is misconfigured"})
			return
		}
		log.Printf("create event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"event":    event,
		"dispatch": report,
	})
}

// GetEvents lists upcoming and recent scheduled events, newest first.
func GetEvents(c *gin.Context) {
	if _, ok := getCurrentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 20
	offset := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	var events []models.ScheduledEvent
	if err := getDB().Where("delete_at IS NULL").Order("start_at DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

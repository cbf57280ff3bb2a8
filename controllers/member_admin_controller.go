package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"service-request-api/models"
)

// GetPendingMembers lists members awaiting approval.
func GetPendingMembers(c *gin.Context) {
	var users []models.User
	if err := getDB().Preload("Role").Preload("Organization").
		Where("member_status = ? AND delete_at IS NULL", models.MemberStatusPending).
		Order("create_at ASC").
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": users})
}

type approveMemberReq struct {
	OrgID int `json:"org_id" binding:"required"`
}

// ApproveMember approves a pending member, assigns their organization
// and moves their LINE rich menu to the matching state. The menu switch
// is best-effort: its diagnostics ride along in the response and a
// gateway outage never fails the approval.
func ApproveMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req approveMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var org models.Organization
	if err := getDB().Where("org_id = ?", req.OrgID).First(&org).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization not found"})
		return
	}

	var user models.User
	if err := getDB().Where("user_id = ? AND delete_at IS NULL", id).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.MemberStatus != models.MemberStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Member already processed"})
		return
	}

	now := time.Now()
	if err := getDB().Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"member_status": models.MemberStatusApproved,
			"org_id":        org.OrgID,
			"update_at":     now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	diag := menuSwitcher.SwitchForUser(getDB(), user.UserID)

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"menu_switch": diag,
	})
}

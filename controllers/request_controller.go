package controllers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"service-request-api/models"
	"service-request-api/services"
	"service-request-api/utils"
)

var allowedAttachmentTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

const maxAttachmentSize = int64(10 * 1024 * 1024) // 10MB

func parseFormInt(c *gin.Context, field string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(c.PostForm(field)))
	return v
}

// CreateRequest handles intake of a new service request. Multipart
// form: the request fields plus zero or more "files" attachments.
//
// Attachment files are moved into storage before the database
// transaction runs; the service removes them again if the transaction
// rolls back.
func CreateRequest(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	in := services.RequestInput{
		RequestType: strings.TrimSpace(c.PostForm("request_type")),
		SubTypeID:   parseFormInt(c, "sub_type_id"),
		Subject:     c.PostForm("subject"),
		Detail:      c.PostForm("detail"),
		ProvinceID:  parseFormInt(c, "province_id"),
		Location:    c.PostForm("location"),
		DeviceID:    parseFormInt(c, "device_id"),
		StartAt:     c.PostForm("start_at"),
		EndAt:       c.PostForm("end_at"),
	}

	form, err := c.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form payload"})
		return
	}

	var uploads []services.AttachmentFile
	if form != nil {
		files := form.File["files"]

		for _, file := range files {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !allowedAttachmentTypes[ext] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed: " + file.Filename})
				return
			}
			if file.Size > maxAttachmentSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit: " + file.Filename})
				return
			}
		}

		if len(files) > 0 {
			folder, err := utils.RequestFolderPath(time.Now())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload folder"})
				return
			}

			for _, file := range files {
				storedName := utils.GenerateStoredName(file.Filename)
				fullPath := filepath.Join(folder, storedName)
				if err := c.SaveUploadedFile(file, fullPath); err != nil {
					// Undo anything already staged for this request.
					for _, u := range uploads {
						if rmErr := utils.RemoveStoredFile(u.StoredPath); rmErr != nil {
							log.Printf("failed to remove staged attachment %s: %v", u.StoredPath, rmErr)
						}
					}
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
					return
				}
				uploads = append(uploads, services.AttachmentFile{
					StoredPath:   fullPath,
					OriginalName: file.Filename,
					StoredName:   storedName,
					FileSize:     file.Size,
				})
			}
		}
	}

	request, report, ve, err := requestService.Create(userID, in, uploads)
	if ve != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve})
		return
	}
	if err != nil {
		if errors.Is(err, services.ErrCategoryUnresolved) {
			log.Printf("create request: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "notification category catalog is misconfigured"})
			return
		}
		log.Printf("create request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request":  request,
		"dispatch": report,
	})
}

// GetRequests lists requests: own requests for members, everything for
// staff and admin.
func GetRequests(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	limit := 20
	offset := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	q := getDB().Model(&models.ServiceRequest{}).Where("delete_at IS NULL")
	if roleID == models.RoleMember {
		q = q.Where("requester_id = ?", userID)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if requestType := strings.TrimSpace(c.Query("type")); requestType != "" {
		q = q.Where("request_type = ?", requestType)
	}

	var items []models.ServiceRequest
	if err := q.Order("create_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetRequest returns one request with its attachments.
func GetRequest(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var request models.ServiceRequest
	if err := getDB().Preload("Attachments").Preload("Device").
		Where("request_id = ? AND delete_at IS NULL", id).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	if roleID == models.RoleMember && request.RequesterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// DownloadAttachment streams one stored attachment file.
func DownloadAttachment(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	id, err := strconv.Atoi(c.Param("attachment_id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var attachment models.RequestAttachment
	if err := getDB().Where("attachment_id = ?", id).First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	var request models.ServiceRequest
	if err := getDB().Where("request_id = ? AND delete_at IS NULL", attachment.RequestID).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if roleID == models.RoleMember && request.RequesterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.FileAttachment(attachment.StoredPath, attachment.OriginalName)
}

type approveRequestReq struct {
	Channel string `json:"channel"` // web|line, defaults to web
}

type rejectRequestReq struct {
	Channel string `json:"channel"`
	Reason  string `json:"reason"`
}

func normalizeApprovalChannel(channel string) string {
	channel = strings.TrimSpace(strings.ToLower(channel))
	if channel != services.ChannelLine {
		channel = services.ChannelWeb
	}
	return channel
}

// ApproveRequest marks a pending request approved and informs the
// requester by email, best-effort.
func ApproveRequest(c *gin.Context) {
	adminID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body approveRequestReq
	_ = c.ShouldBindJSON(&body)
	channel := normalizeApprovalChannel(body.Channel)

	var request models.ServiceRequest
	if err := getDB().Preload("Requester").
		Where("request_id = ? AND delete_at IS NULL", id).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if request.Status != models.RequestStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request already processed"})
		return
	}

	now := time.Now()
	if err := getDB().Model(&models.ServiceRequest{}).
		Where("request_id = ?", request.RequestID).
		Updates(map[string]interface{}{
			"status":           models.RequestStatusApproved,
			"approved_by":      adminID,
			"approved_channel": channel,
			"approved_at":      now,
			"update_at":        now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go func(requester models.User, subject string) {
		if requester.Email == "" {
			return
		}
		name := buildDisplayName(requester.UserFname, requester.UserLname)
		mailSubject := "คำขอของคุณได้รับการอนุมัติ"
		bodyText := "คำขอ \"" + subject + "\" ได้รับการอนุมัติเมื่อ " + utils.FormatThaiDateTime(now)
		sendMailSafe([]string{requester.Email}, mailSubject, buildFormalEmailHTML(mailSubject, name, bodyText))
	}(request.Requester, request.Subject)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RejectRequest marks a pending request rejected and informs the
// requester by email, best-effort.
func RejectRequest(c *gin.Context) {
	adminID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body rejectRequestReq
	_ = c.ShouldBindJSON(&body)
	channel := normalizeApprovalChannel(body.Channel)

	var request models.ServiceRequest
	if err := getDB().Preload("Requester").
		Where("request_id = ? AND delete_at IS NULL", id).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if request.Status != models.RequestStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request already processed"})
		return
	}

	now := time.Now()
	if err := getDB().Model(&models.ServiceRequest{}).
		Where("request_id = ?", request.RequestID).
		Updates(map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"approved_by":      adminID,
			"approved_channel": channel,
			"approved_at":      now,
			"update_at":        now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		reason = "ไม่ระบุ"
	}

	go func(requester models.User, subject string) {
		if requester.Email == "" {
			return
		}
		name := buildDisplayName(requester.UserFname, requester.UserLname)
		mailSubject := "คำขอของคุณไม่ได้รับการอนุมัติ"
		bodyText := "คำขอ \"" + subject + "\" ไม่ได้รับการอนุมัติ เหตุผล: " + reason
		sendMailSafe([]string{requester.Email}, mailSubject, buildFormalEmailHTML(mailSubject, name, bodyText))
	}(request.Requester, request.Subject)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

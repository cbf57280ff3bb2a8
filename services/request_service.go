package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"service-request-api/models"
	"service-request-api/utils"
)

// RepairSubTypeID is the fixed sub-category every repair request is
// forced onto (exact match with the request_sub_types seed).
const RepairSubTypeID = 4

// RequestInput is the raw field set from the intake form. Datetimes
// arrive as strings and are validated here, not in the controller.
type RequestInput struct {
	RequestType string `json:"request_type"`
	SubTypeID   int    `json:"sub_type_id"`
	Subject     string `json:"subject"`
	Detail      string `json:"detail"`
	ProvinceID  int    `json:"province_id"`
	Location    string `json:"location"`
	DeviceID    int    `json:"device_id"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
}

// ValidationErrors maps field name to the reason it was rejected.
type ValidationErrors map[string]string

// AttachmentFile describes a file already moved into durable storage,
// waiting for its row to be written inside the create transaction.
type AttachmentFile struct {
	StoredPath   string
	OriginalName string
	StoredName   string
	FileSize     int64
}

// repairAsset is the resolved device plus its owning organization,
// needed to validate a repair request.
type repairAsset struct {
	Device models.Device
	Org    models.Organization
}

// validateRequestInput applies the per-type field matrix and returns
// the normalized request row. asset is only consulted for repairs.
// Fields are checked in a fixed order so the reported errors are
// deterministic for the same input.
func validateRequestInput(in RequestInput, asset *repairAsset) (models.ServiceRequest, ValidationErrors) {
	ve := ValidationErrors{}
	req := models.ServiceRequest{
		RequestType: in.RequestType,
		Subject:     utils.SanitizeInput(in.Subject),
		ProvinceID:  in.ProvinceID,
		Status:      models.RequestStatusPending,
	}

	if detail := utils.SanitizeInput(in.Detail); detail != "" {
		req.Detail = &detail
	}

	parsePeriod := func() (start, end *time.Time) {
		if in.StartAt == "" {
			ve["start_at"] = "start_at is required"
		} else if t, ok := utils.ParseDateTime(in.StartAt); ok {
			start = &t
		} else {
			ve["start_at"] = "start_at must match YYYY-MM-DD HH:MM:SS"
		}
		if in.EndAt == "" {
			ve["end_at"] = "end_at is required"
		} else if t, ok := utils.ParseDateTime(in.EndAt); ok {
			end = &t
		} else {
			ve["end_at"] = "end_at must match YYYY-MM-DD HH:MM:SS"
		}
		if start != nil && end != nil && !end.After(*start) {
			ve["end_at"] = "end_at must be later than start_at"
		}
		return start, end
	}

	switch in.RequestType {
	case models.RequestTypeConference:
		if in.SubTypeID <= 0 {
			ve["sub_type_id"] = "sub_type_id is required"
		} else {
			sub := in.SubTypeID
			req.SubTypeID = &sub
		}
		if req.Subject == "" {
			ve["subject"] = "subject is required"
		}
		req.StartAt, req.EndAt = parsePeriod()
		if in.ProvinceID <= 0 {
			ve["province_id"] = "province_id is required"
		}
		if in.Location != "" {
			ve["location"] = "location is not allowed for conference requests"
		}

	case models.RequestTypeRepair:
		if in.DeviceID <= 0 {
			ve["device_id"] = "device_id is required"
		} else if asset != nil {
			device := asset.Device.DeviceID
			req.DeviceID = &device
			location := asset.Org.OrgName
			req.Location = &location
		}
		if req.Subject == "" {
			ve["subject"] = "subject is required"
		}
		if in.ProvinceID <= 0 {
			ve["province_id"] = "province_id is required"
		} else if asset != nil && asset.Org.ProvinceID != in.ProvinceID {
			ve["province_id"] = "province/region mismatch with the device's organization"
		}
		if in.StartAt != "" {
			ve["start_at"] = "start_at is not allowed for repair requests"
		}
		if in.EndAt != "" {
			ve["end_at"] = "end_at is not allowed for repair requests"
		}
		sub := RepairSubTypeID
		req.SubTypeID = &sub

	case models.RequestTypeOther:
		if req.Subject == "" {
			ve["subject"] = "subject is required"
		}
		if in.ProvinceID <= 0 {
			ve["province_id"] = "province_id is required"
		}
		if in.Location == "" {
			ve["location"] = "location is required"
		} else {
			location := utils.SanitizeInput(in.Location)
			req.Location = &location
		}
		if in.SubTypeID <= 0 {
			ve["sub_type_id"] = "sub_type_id is required"
		} else {
			sub := in.SubTypeID
			req.SubTypeID = &sub
		}
		req.StartAt, req.EndAt = parsePeriod()

	default:
		ve["request_type"] = "request_type must be conference, repair or other"
	}

	if len(ve) > 0 {
		return models.ServiceRequest{}, ve
	}
	return req, nil
}

// RequestService owns request intake: validation, the atomic create
// transaction and the post-commit notification dispatch.
type RequestService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewRequestService(db *gorm.DB, dispatcher *Dispatcher) *RequestService {
	return &RequestService{db: db, dispatcher: dispatcher}
}

// loadRepairAsset resolves the device and its owning organization. A
// missing device or an orphan device (no organization) is a
// validation-level failure, not an internal error.
func (s *RequestService) loadRepairAsset(deviceID int) (*repairAsset, ValidationErrors, error) {
	if deviceID <= 0 {
		return nil, nil, nil
	}

	var device models.Device
	if err := s.db.Where("device_id = ? AND delete_at IS NULL", deviceID).First(&device).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ValidationErrors{"device_id": "device not found"}, nil
		}
		return nil, nil, fmt.Errorf("failed to load device: %w", err)
	}

	if device.OrgID == nil {
		return nil, ValidationErrors{"device_id": "device has no owning organization"}, nil
	}

	var org models.Organization
	if err := s.db.Where("org_id = ? AND delete_at IS NULL", *device.OrgID).First(&org).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ValidationErrors{"device_id": "device's organization not found"}, nil
		}
		return nil, nil, fmt.Errorf("failed to load organization: %w", err)
	}

	return &repairAsset{Device: device, Org: org}, nil, nil
}

// buildRequestMessage renders the plain-text notification for a new
// request; the same text is stored on the row and pushed via LINE.
func buildRequestMessage(req models.ServiceRequest) string {
	switch req.RequestType {
	case models.RequestTypeConference:
		return fmt.Sprintf("มีคำขอใช้ห้องประชุมใหม่: %s (%s)", req.Subject, utils.FormatThaiDateTime(*req.StartAt))
	case models.RequestTypeRepair:
		location := ""
		if req.Location != nil {
			location = *req.Location
		}
		return fmt.Sprintf("มีคำขอแจ้งซ่อมใหม่: %s (%s)", req.Subject, location)
	default:
		return fmt.Sprintf("มีคำขอรับบริการใหม่: %s", req.Subject)
	}
}

// Create validates the input, then inserts the request, its attachment
// rows and the notification row in one transaction. The dispatch
// fan-out runs only after the transaction has committed and is
// best-effort: its report never fails the creation.
//
// Attachment files have already been moved into storage by the caller;
// on any failed outcome - validation rejection or a rolled-back
// transaction - they are removed again so no orphan files are left
// behind.
func (s *RequestService) Create(requesterID int, in RequestInput, files []AttachmentFile) (*models.ServiceRequest, *DispatchReport, ValidationErrors, error) {
	removeStaged := func() {
		for _, f := range files {
			if rmErr := utils.RemoveStoredFile(f.StoredPath); rmErr != nil {
				log.Printf("failed to remove staged attachment %s: %v", f.StoredPath, rmErr)
			}
		}
	}

	var asset *repairAsset
	if in.RequestType == models.RequestTypeRepair {
		loaded, ve, err := s.loadRepairAsset(in.DeviceID)
		if err != nil {
			removeStaged()
			return nil, nil, nil, err
		}
		if ve != nil {
			removeStaged()
			return nil, nil, ve, nil
		}
		asset = loaded
	}

	req, ve := validateRequestInput(in, asset)
	if ve != nil {
		removeStaged()
		return nil, nil, ve, nil
	}

	now := time.Now()
	req.RequesterID = requesterID
	req.HasAttachment = len(files) > 0
	req.CreateAt = now

	var categoryID int
	var message string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := ResolveCategory(tx, req.RequestType)
		if err != nil {
			return err
		}
		categoryID = resolved

		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("failed to insert request: %w", err)
		}

		for _, f := range files {
			attachment := models.RequestAttachment{
				RequestID:    req.RequestID,
				StoredPath:   f.StoredPath,
				OriginalName: f.OriginalName,
				StoredName:   f.StoredName,
				FileSize:     f.FileSize,
				UploadedBy:   requesterID,
				UploadedAt:   now,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return fmt.Errorf("failed to insert attachment: %w", err)
			}
		}

		message = buildRequestMessage(req)
		notification := models.Notification{
			RequestID:  &req.RequestID,
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
		// Files were staged before the transaction; take them back out.
		removeStaged()
		return nil, nil, nil, err
	}

	report := s.dispatcher.Dispatch(categoryID, message)
	return &req, &report, nil, nil
}

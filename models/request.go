package models

import (
	"time"
)

// Request type values
const (
	RequestTypeConference = "conference"
	RequestTypeRepair     = "repair"
	RequestTypeOther      = "other"
)

// Request status values
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

type ServiceRequest struct {
	RequestID       int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	RequestType     string     `gorm:"column:request_type" json:"request_type"` // conference|repair|other
	SubTypeID       *int       `gorm:"column:sub_type_id" json:"sub_type_id,omitempty"`
	Subject         string     `gorm:"column:subject" json:"subject"`
	Detail          *string    `gorm:"column:detail" json:"detail,omitempty"`
	RequesterID     int        `gorm:"column:requester_id" json:"requester_id"`
	ProvinceID      int        `gorm:"column:province_id" json:"province_id"`
	Location        *string    `gorm:"column:location" json:"location,omitempty"`
	DeviceID        *int       `gorm:"column:device_id" json:"device_id,omitempty"`
	StartAt         *time.Time `gorm:"column:start_at" json:"start_at,omitempty"`
	EndAt           *time.Time `gorm:"column:end_at" json:"end_at,omitempty"`
	HasAttachment   bool       `gorm:"column:has_attachment" json:"has_attachment"`
	Status          string     `gorm:"column:status" json:"status"` // pending|approved|rejected
	ApprovedBy      *int       `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedChannel *string    `gorm:"column:approved_channel" json:"approved_channel,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreateAt        time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Requester   User                `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Device      *Device             `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	Attachments []RequestAttachment `gorm:"foreignKey:RequestID" json:"attachments,omitempty"`
}

type RequestAttachment struct {
	AttachmentID int       `gorm:"primaryKey;column:attachment_id" json:"attachment_id"`
	RequestID    int       `gorm:"column:request_id" json:"request_id"`
	StoredPath   string    `gorm:"column:stored_path" json:"stored_path"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredName   string    `gorm:"column:stored_name" json:"stored_name"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	UploadedBy   int       `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// RequestSubType is the catalog of sub-categories per request type.
type RequestSubType struct {
	SubTypeID   int    `gorm:"primaryKey;column:sub_type_id" json:"sub_type_id"`
	RequestType string `gorm:"column:request_type" json:"request_type"`
	SubTypeName string `gorm:"column:sub_type_name" json:"sub_type_name"`
}

// ScheduledEvent is an internal calendar event that can carry its own
// notification, independent of any service request.
type ScheduledEvent struct {
	EventID   int        `gorm:"primaryKey;column:event_id" json:"event_id"`
	Title     string     `gorm:"column:title" json:"title"`
	Detail    *string    `gorm:"column:detail" json:"detail,omitempty"`
	StartAt   time.Time  `gorm:"column:start_at" json:"start_at"`
	EndAt     time.Time  `gorm:"column:end_at" json:"end_at"`
	CreatedBy int        `gorm:"column:created_by" json:"created_by"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (ServiceRequest) TableName() string {
	return "service_requests"
}

func (RequestAttachment) TableName() string {
	return "request_attachments"
}

func (RequestSubType) TableName() string {
	return "request_sub_types"
}

func (ScheduledEvent) TableName() string {
	return "scheduled_events"
}

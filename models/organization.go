package models

import (
	"time"
)

type Organization struct {
	OrgID      int        `gorm:"primaryKey;column:org_id" json:"org_id"`
	OrgName    string     `gorm:"column:org_name" json:"org_name"`
	OrgTypeID  int        `gorm:"column:org_type_id" json:"org_type_id"`
	ProvinceID int        `gorm:"column:province_id" json:"province_id"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	OrgType  OrgType  `gorm:"foreignKey:OrgTypeID" json:"org_type,omitempty"`
	Province Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
}

type OrgType struct {
	OrgTypeID int    `gorm:"primaryKey;column:org_type_id" json:"org_type_id"`
	TypeName  string `gorm:"column:type_name" json:"type_name"`
}

type Province struct {
	ProvinceID   int    `gorm:"primaryKey;column:province_id" json:"province_id"`
	ProvinceName string `gorm:"column:province_name" json:"province_name"`
}

// Device represents repairable equipment registered to an organization.
type Device struct {
	DeviceID   int        `gorm:"primaryKey;column:device_id" json:"device_id"`
	DeviceName string     `gorm:"column:device_name" json:"device_name"`
	OrgID      *int       `gorm:"column:org_id" json:"org_id,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
}

// TableName overrides
func (Organization) TableName() string {
	return "organizations"
}

func (OrgType) TableName() string {
	return "org_types"
}

func (Province) TableName() string {
	return "provinces"
}

func (Device) TableName() string {
	return "devices"
}

package models

import (
	"time"
)

type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	Password     string     `gorm:"column:password" json:"-"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	OrgID        *int       `gorm:"column:org_id" json:"org_id,omitempty"`
	LineUserID   *string    `gorm:"column:line_user_id" json:"line_user_id,omitempty"`
	MemberStatus string     `gorm:"column:member_status" json:"member_status"` // pending|approved
	Tel          *string    `gorm:"column:tel" json:"tel,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role         Role          `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Member status values
const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
)

// Role IDs (exact match with roles table)
const (
	RoleMember = 1
	RoleStaff  = 2
	RoleAdmin  = 3
)

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

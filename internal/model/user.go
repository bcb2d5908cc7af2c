package model

import (
	"time"
)

// Roles a user can hold inside a tenant
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleGuest   = "guest"
)

// User represents an account. Root users are their own parent; child users
// share the parent's tenant and default category.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	Name              string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Email             string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"type:varchar(255);not null"`
	Role              string    `json:"role" gorm:"type:varchar(16);not null;default:admin"`
	ParentID          string    `json:"parentId" gorm:"type:varchar(32);index;not null"`
	Parent            *User     `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	DefaultCategoryID *string   `json:"defaultCategoryId" gorm:"type:varchar(32)"`
	SignInAllowed     bool      `json:"isSignInAllowed" gorm:"not null"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff, RoleGuest:
		return true
	}
	return false
}

package model

import (
	"time"
)

type Vendor struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	OwnerID   string    `json:"ownerId" gorm:"type:varchar(32);index;not null"`
	Owner     *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatorID string    `json:"creatorId" gorm:"type:varchar(32);index;not null"`
	Creator   *User     `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

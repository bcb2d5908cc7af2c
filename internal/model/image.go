package model

import (
	"time"
)

// Image is the metadata row of an uploaded file. The row exists iff the
// blob stored under Key exists.
type Image struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	OwnerID          string    `json:"ownerId" gorm:"type:varchar(32);index;not null"`
	Owner            *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatorID        string    `json:"creatorId" gorm:"type:varchar(32);index;not null"`
	Creator          *User     `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Key              string    `json:"-" gorm:"type:varchar(255);not null"`
	URL              string    `json:"url" gorm:"type:varchar(512);uniqueIndex;not null"`
	OriginalFileName string    `json:"originalFileName" gorm:"type:varchar(255)"`
	CreatedAt        time.Time `json:"createdAt"`
}

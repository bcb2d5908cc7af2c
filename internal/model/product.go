package model

import (
	"time"
)

// Product is an inventory item kept in exactly one category
type Product struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	OwnerID           string    `json:"ownerId" gorm:"type:varchar(32);index;not null"`
	Owner             *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatorID         string    `json:"creatorId" gorm:"type:varchar(32);index;not null"`
	Creator           *User     `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	CategoryID        string    `json:"categoryId" gorm:"type:varchar(32);not null;index:idx_products_category_sort,priority:1"`
	Category          *Category `json:"-" gorm:"foreignKey:CategoryID"`
	Name              string    `json:"name" gorm:"type:varchar(255);not null;index"`
	SortOrder         int       `json:"sortOrder" gorm:"not null;default:0;index:idx_products_category_sort,priority:2"`
	DisplayQtyDivider int       `json:"displayQtyDivider" gorm:"not null;default:1"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

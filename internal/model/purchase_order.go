package model

import (
	"time"
)

// PurchaseOrder records goods bought from a vendor. Costs are in minor units.
type PurchaseOrder struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(32)"`
	OwnerID       string         `json:"ownerId" gorm:"type:varchar(32);index;not null"`
	Owner         *User          `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatorID     string         `json:"creatorId" gorm:"type:varchar(32);index;not null"`
	Creator       *User          `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	VendorID      string         `json:"vendorId" gorm:"type:varchar(32);not null;index"`
	Vendor        *Vendor        `json:"-" gorm:"foreignKey:VendorID"`
	TotalCost     int64          `json:"totalCost" gorm:"not null;default:0"`
	OrderedAt     time.Time      `json:"orderedAt" gorm:"not null"`
	ImageID       *string        `json:"imageId" gorm:"type:varchar(32);index"`
	Image         *Image         `json:"-" gorm:"foreignKey:ImageID;constraint:OnDelete:SET NULL"`
	PurchaseItems []PurchaseItem `json:"purchaseItems" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PurchaseItem is one line of a purchase order
type PurchaseItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	OwnerID         string    `json:"ownerId" gorm:"type:varchar(32);index;not null"`
	Owner           *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatorID       string    `json:"creatorId" gorm:"type:varchar(32);index;not null"`
	Creator         *User     `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	PurchaseOrderID string    `json:"purchaseOrderId" gorm:"type:varchar(32);not null;index:idx_purchase_items_order_sort,priority:1"`
	VendorID        string    `json:"vendorId" gorm:"type:varchar(32);not null;index"`
	ProductID       string    `json:"productId" gorm:"type:varchar(32);not null;index"`
	Product         *Product  `json:"-" gorm:"foreignKey:ProductID"`
	CostPrice       int64     `json:"costPrice" gorm:"not null"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	SortOrder       int       `json:"sortOrder" gorm:"not null;default:0;index:idx_purchase_items_order_sort,priority:2"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

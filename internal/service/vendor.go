package service

import (
	"context"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/ownership"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/idgen"

	"gorm.io/gorm"
)

type VendorService struct {
	tx *txn.Manager
}

func (s *VendorService) List(ctx context.Context, p *principal.Principal) ([]model.Vendor, error) {
	if err := ownership.Authorize(p, ownership.ResourceVendor, ownership.ActionRead); err != nil {
		return nil, err
	}
	var vendors []model.Vendor
	if err := s.tx.DB(ctx).Scopes(ownership.ScopeForRead(p)).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, apperror.Internal("list vendors", err)
	}
	return vendors, nil
}

func (s *VendorService) Create(ctx context.Context, p *principal.Principal, name string) (out *model.Vendor, err error) {
	defer func() { observe(ctx, "vendor", "create", err) }()

	if err := ownership.Authorize(p, ownership.ResourceVendor, ownership.ActionCreate); err != nil {
		return nil, err
	}
	name, err = requireName(name, 1)
	if err != nil {
		return nil, err
	}

	vendor := model.Vendor{
		ID:        idgen.New(idgen.Vendor),
		OwnerID:   p.ParentID,
		CreatorID: p.ID,
		Name:      name,
	}
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&vendor).Error; err != nil {
			return apperror.Internal("create vendor", err)
		}
		return nil
	}, txn.Named("create_vendor"))
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Update renames a vendor created by p
func (s *VendorService) Update(ctx context.Context, p *principal.Principal, id string, name *string) (out *model.Vendor, err error) {
	defer func() { observe(ctx, "vendor", "update", err) }()

	if err := ownership.Authorize(p, ownership.ResourceVendor, ownership.ActionUpdate); err != nil {
		return nil, err
	}
	if name == nil {
		return nil, apperror.BadRequest("no update data provided")
	}
	newName, err := requireName(*name, 1)
	if err != nil {
		return nil, err
	}

	var vendor model.Vendor
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := ownership.FetchForWrite(tx, p, &vendor, id, "vendor"); err != nil {
			return err
		}
		if err := tx.Model(&vendor).Update("name", newName).Error; err != nil {
			return apperror.Internal("update vendor", err)
		}
		return nil
	}, txn.Named("update_vendor"))
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Delete removes a vendor created by p that no purchase order references
func (s *VendorService) Delete(ctx context.Context, p *principal.Principal, id string) (err error) {
	defer func() { observe(ctx, "vendor", "delete", err) }()

	if err := ownership.Authorize(p, ownership.ResourceVendor, ownership.ActionDelete); err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		var vendor model.Vendor
		if err := ownership.FetchForWrite(tx, p, &vendor, id, "vendor"); err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&model.PurchaseOrder{}).Where("vendor_id = ?", vendor.ID).Count(&used).Error; err != nil {
			return apperror.Internal("count purchase orders", err)
		}
		if used > 0 {
			return apperror.BadRequest("vendor used by purchase order")
		}
		if err := tx.Delete(&vendor).Error; err != nil {
			return apperror.Internal("delete vendor", err)
		}
		return nil
	}, txn.Named("delete_vendor"))
}

package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/ordering"
	"github.com/AR-Project/wpt-v3/internal/ownership"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/idgen"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	CostPrice int64  `json:"costPrice"`
}

type CreatePurchaseOrderInput struct {
	VendorID      string              `json:"vendorId"`
	TotalCost     *int64              `json:"totalCost"`
	OrderedAt     *time.Time          `json:"orderedAt"`
	ImageID       *string             `json:"imageId"`
	PurchaseItems []PurchaseItemInput `json:"purchaseItems"`
}

func (in CreatePurchaseOrderInput) validate() error {
	if in.VendorID == "" {
		return apperror.BadRequest("vendor ID invalid")
	}
	if len(in.PurchaseItems) == 0 {
		return apperror.BadRequest("at least one purchase item required")
	}
	var sum int64
	for _, item := range in.PurchaseItems {
		if item.ProductID == "" {
			return apperror.BadRequest("(some) product(s) ID invalid")
		}
		if item.Quantity <= 0 {
			return apperror.BadRequest("quantity must be positive")
		}
		if item.CostPrice < 0 {
			return apperror.BadRequest("costPrice must not be negative")
		}
		if item.CostPrice > 0 && int64(item.Quantity) > math.MaxInt64/item.CostPrice {
			return apperror.BadRequest("purchase item cost too large")
		}
		line := item.CostPrice * int64(item.Quantity)
		if sum > math.MaxInt64-line {
			return apperror.BadRequest("totalCost too large")
		}
		sum += line
	}
	if in.TotalCost != nil && *in.TotalCost < 0 {
		return apperror.BadRequest("totalCost must not be negative")
	}
	return nil
}

type PurchaseOrderService struct {
	tx  *txn.Manager
	now func() time.Time
}

func (s *PurchaseOrderService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("PurchaseItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

// List returns the tenant's purchase orders, newest first
func (s *PurchaseOrderService) List(ctx context.Context, p *principal.Principal) ([]model.PurchaseOrder, error) {
	if err := ownership.Authorize(p, ownership.ResourcePurchaseOrder, ownership.ActionRead); err != nil {
		return nil, err
	}
	var orders []model.PurchaseOrder
	err := s.tx.DB(ctx).Scopes(ownership.ScopeForRead(p), withItems).
		Order("ordered_at DESC").Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal("list purchase orders", err)
	}
	return orders, nil
}

// Get returns one purchase order of the tenant with its items in order
func (s *PurchaseOrderService) Get(ctx context.Context, p *principal.Principal, id string) (*model.PurchaseOrder, error) {
	if err := ownership.Authorize(p, ownership.ResourcePurchaseOrder, ownership.ActionRead); err != nil {
		return nil, err
	}
	return s.load(s.tx.DB(ctx), p, id)
}

func (s *PurchaseOrderService) load(db *gorm.DB, p *principal.Principal, id string) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := db.Scopes(ownership.ScopeForRead(p), withItems).Where("id = ?", id).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("purchase order not found")
	}
	if err != nil {
		return nil, apperror.Internal("load purchase order", err)
	}
	return &order, nil
}

// Create inserts a purchase order and all of its items. Vendor, products and
// image must belong to the tenant; any invalid reference rejects the whole order.
func (s *PurchaseOrderService) Create(ctx context.Context, p *principal.Principal, in CreatePurchaseOrderInput) (out *model.PurchaseOrder, err error) {
	defer func() { observe(ctx, "purchase_order", "create", err) }()

	if err := ownership.Authorize(p, ownership.ResourcePurchaseOrder, ownership.ActionCreate); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *model.PurchaseOrder
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		var vendors int64
		if err := tx.Model(&model.Vendor{}).Scopes(ownership.ScopeForRead(p)).Where("id = ?", in.VendorID).Count(&vendors).Error; err != nil {
			return apperror.Internal("check vendor", err)
		}
		if vendors == 0 {
			return apperror.BadRequest("vendor ID invalid")
		}

		productIDs := distinctProductIDs(in.PurchaseItems)
		var products int64
		if err := tx.Model(&model.Product{}).Scopes(ownership.ScopeForRead(p)).Where("id IN ?", productIDs).Count(&products).Error; err != nil {
			return apperror.Internal("check products", err)
		}
		if int(products) != len(productIDs) {
			return apperror.BadRequest("(some) product(s) ID invalid")
		}

		if in.ImageID != nil && *in.ImageID != "" {
			var images int64
			if err := tx.Model(&model.Image{}).Scopes(ownership.ScopeForRead(p)).Where("id = ?", *in.ImageID).Count(&images).Error; err != nil {
				return apperror.Internal("check image", err)
			}
			if images == 0 {
				return apperror.BadRequest("image ID invalid")
			}
		}

		order := model.PurchaseOrder{
			ID:        idgen.New(idgen.PurchaseOrder),
			OwnerID:   p.ParentID,
			CreatorID: p.ID,
			VendorID:  in.VendorID,
			TotalCost: totalCost(in),
			OrderedAt: s.clock(),
		}
		if in.OrderedAt != nil {
			order.OrderedAt = in.OrderedAt.UTC()
		}
		if in.ImageID != nil && *in.ImageID != "" {
			order.ImageID = in.ImageID
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return apperror.Internal("create purchase order", err)
		}

		items := make([]model.PurchaseItem, len(in.PurchaseItems))
		for i, item := range in.PurchaseItems {
			items[i] = model.PurchaseItem{
				ID:              idgen.New(idgen.PurchaseItem),
				OwnerID:         p.ParentID,
				CreatorID:       p.ID,
				PurchaseOrderID: order.ID,
				VendorID:        in.VendorID,
				ProductID:       item.ProductID,
				CostPrice:       item.CostPrice,
				Quantity:        item.Quantity,
				SortOrder:       i,
			}
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&items, 100).Error; err != nil {
			return apperror.Internal("create purchase items", err)
		}

		order.PurchaseItems = items
		created = &order
		return nil
	}, txn.Named("create_purchase_order"))
	if err != nil {
		return nil, err
	}
	return created, nil
}

func distinctProductIDs(items []PurchaseItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// totalCost uses the submitted total or the sum of the item lines. validate
// has already rejected sums that overflow.
func totalCost(in CreatePurchaseOrderInput) int64 {
	if in.TotalCost != nil {
		return *in.TotalCost
	}
	var sum int64
	for _, item := range in.PurchaseItems {
		sum += item.CostPrice * int64(item.Quantity)
	}
	return sum
}

// Delete removes a purchase order created by p together with its items
func (s *PurchaseOrderService) Delete(ctx context.Context, p *principal.Principal, id string) (err error) {
	defer func() { observe(ctx, "purchase_order", "delete", err) }()

	if err := ownership.Authorize(p, ownership.ResourcePurchaseOrder, ownership.ActionDelete); err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		var order model.PurchaseOrder
		if err := ownership.FetchForWrite(tx, p, &order, id, "purchase order"); err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&model.PurchaseItem{}).Error; err != nil {
			return apperror.Internal("delete purchase items", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return apperror.Internal("delete purchase order", err)
		}
		return nil
	}, txn.Named("delete_purchase_order"))
}

// ReorderItems sets the order of every item in a purchase order
func (s *PurchaseOrderService) ReorderItems(ctx context.Context, p *principal.Principal, id string, ids []string) (err error) {
	defer func() { observe(ctx, "purchase_order", "reorder", err) }()

	if err := ownership.Authorize(p, ownership.ResourcePurchaseOrder, ownership.ActionUpdate); err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		return ordering.PurchaseItems.Reorder(tx, p, id, ids)
	}, txn.Named("reorder_purchase_items"))
}

package service

import (
	"context"
	"errors"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/ordering"
	"github.com/AR-Project/wpt-v3/internal/ownership"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/idgen"

	"gorm.io/gorm"
)

type CreateProductInput struct {
	Name              string  `json:"name"`
	CategoryID        *string `json:"categoryId"`
	DisplayQtyDivider *int    `json:"displayQtyDivider"`
}

type UpdateProductInput struct {
	Name              *string `json:"name"`
	CategoryID        *string `json:"categoryId"`
	SortOrder         *int    `json:"sortOrder"`
	DisplayQtyDivider *int    `json:"displayQtyDivider"`
}

func (in UpdateProductInput) empty() bool {
	return in.Name == nil && in.CategoryID == nil && in.SortOrder == nil && in.DisplayQtyDivider == nil
}

type ProductService struct {
	tx *txn.Manager
}

// List returns the tenant's products ordered by category then sort order.
// An empty categoryID lists every category.
func (s *ProductService) List(ctx context.Context, p *principal.Principal, categoryID string) ([]model.Product, error) {
	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionRead); err != nil {
		return nil, err
	}
	q := s.tx.DB(ctx).Scopes(ownership.ScopeForRead(p))
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var products []model.Product
	if err := q.Order("category_id ASC").Order("sort_order ASC").Find(&products).Error; err != nil {
		return nil, apperror.Internal("list products", err)
	}
	return products, nil
}

// Get returns one product of the tenant
func (s *ProductService) Get(ctx context.Context, p *principal.Principal, id string) (*model.Product, error) {
	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionRead); err != nil {
		return nil, err
	}
	var product model.Product
	err := s.tx.DB(ctx).Scopes(ownership.ScopeForRead(p)).Where("id = ?", id).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product not found")
	}
	if err != nil {
		return nil, apperror.Internal("load product", err)
	}
	return &product, nil
}

// resolveCategory returns the explicit category when given, else the
// principal's default category. Both are looked up inside the tenant.
func resolveCategory(tx *gorm.DB, p *principal.Principal, categoryID *string) (*model.Category, error) {
	var category model.Category
	if categoryID != nil && *categoryID != "" {
		if err := ownership.FetchScoped(tx, p, &category, *categoryID, "category"); err != nil {
			return nil, err
		}
		return &category, nil
	}

	err := tx.Scopes(ownership.ScopeForRead(p)).Where("id = ?", p.DefaultCategoryID).Take(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("default category missing", nil)
	}
	if err != nil {
		return nil, apperror.Internal("load default category", err)
	}
	return &category, nil
}

func validDivider(d *int) error {
	if d != nil && *d < 1 {
		return apperror.BadRequest("displayQtyDivider must be at least 1")
	}
	return nil
}

// Create appends a product to its category
func (s *ProductService) Create(ctx context.Context, p *principal.Principal, in CreateProductInput) (out *model.Product, err error) {
	defer func() { observe(ctx, "product", "create", err) }()

	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionCreate); err != nil {
		return nil, err
	}
	name, err := requireName(in.Name, 1)
	if err != nil {
		return nil, err
	}
	if err := validDivider(in.DisplayQtyDivider); err != nil {
		return nil, err
	}

	var product model.Product
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		category, err := resolveCategory(tx, p, in.CategoryID)
		if err != nil {
			return err
		}
		order, err := ordering.Products.Append(tx, category.ID)
		if err != nil {
			return err
		}

		product = model.Product{
			ID:                idgen.New(idgen.Product),
			OwnerID:           p.ParentID,
			CreatorID:         p.ID,
			CategoryID:        category.ID,
			Name:              name,
			SortOrder:         order,
			DisplayQtyDivider: 1,
		}
		if in.DisplayQtyDivider != nil {
			product.DisplayQtyDivider = *in.DisplayQtyDivider
		}
		if err := tx.Create(&product).Error; err != nil {
			return apperror.Internal("create product", err)
		}
		return nil
	}, txn.Named("create_product"))
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update changes a product created by p. A new category moves the product
// to the end of that category; a sortOrder moves it within its category.
func (s *ProductService) Update(ctx context.Context, p *principal.Principal, id string, in UpdateProductInput) (out *model.Product, err error) {
	defer func() { observe(ctx, "product", "update", err) }()

	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionUpdate); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, apperror.BadRequest("no update data provided")
	}
	if err := validDivider(in.DisplayQtyDivider); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name, err := requireName(*in.Name, 1)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.DisplayQtyDivider != nil {
		updates["display_qty_divider"] = *in.DisplayQtyDivider
	}

	var product model.Product
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := ownership.FetchForWrite(tx, p, &product, id, "product"); err != nil {
			return err
		}

		var target *model.Category
		if in.CategoryID != nil {
			var err error
			if target, err = resolveCategory(tx, p, in.CategoryID); err != nil {
				return err
			}
		}
		if target != nil && target.ID != product.CategoryID {
			if err := ordering.Products.Remove(tx, product.CategoryID, product.SortOrder); err != nil {
				return err
			}
			order, err := ordering.Products.Append(tx, target.ID)
			if err != nil {
				return err
			}
			err = tx.Model(&product).UpdateColumns(map[string]interface{}{
				"category_id": target.ID,
				"sort_order":  order,
			}).Error
			if err != nil {
				return apperror.Internal("move product", err)
			}
			product.CategoryID = target.ID
			product.SortOrder = order
		}

		if in.SortOrder != nil {
			if err := ordering.Products.Move(tx, product.CategoryID, product.ID, product.SortOrder, *in.SortOrder); err != nil {
				return err
			}
			product.SortOrder = *in.SortOrder
		}

		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return apperror.Internal("update product", err)
			}
		}
		return tx.Where("id = ?", product.ID).Take(&product).Error
	}, txn.Named("update_product"))
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product created by p that no purchase order references
func (s *ProductService) Delete(ctx context.Context, p *principal.Principal, id string) (err error) {
	defer func() { observe(ctx, "product", "delete", err) }()

	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionDelete); err != nil {
		return err
	}

	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		var product model.Product
		if err := ownership.FetchForWrite(tx, p, &product, id, "product"); err != nil {
			return err
		}

		var used int64
		if err := tx.Model(&model.PurchaseItem{}).Where("product_id = ?", product.ID).Count(&used).Error; err != nil {
			return apperror.Internal("count purchase items", err)
		}
		if used > 0 {
			return apperror.BadRequest("product used by purchase order")
		}

		if err := tx.Delete(&product).Error; err != nil {
			return apperror.Internal("delete product", err)
		}
		return ordering.Products.Remove(tx, product.CategoryID, product.SortOrder)
	}, txn.Named("delete_product"))
}

// Reorder sets the order of every product in a category
func (s *ProductService) Reorder(ctx context.Context, p *principal.Principal, categoryID string, ids []string) (err error) {
	defer func() { observe(ctx, "product", "reorder", err) }()

	if err := ownership.Authorize(p, ownership.ResourceProduct, ownership.ActionUpdate); err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		return ordering.Products.Reorder(tx, p, categoryID, ids)
	}, txn.Named("reorder_products"))
}

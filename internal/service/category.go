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

const minCategoryName = 3

type CategoryService struct {
	tx *txn.Manager
}

// List returns the tenant's categories in display order
func (s *CategoryService) List(ctx context.Context, p *principal.Principal) ([]model.Category, error) {
	if err := ownership.Authorize(p, ownership.ResourceCategory, ownership.ActionRead); err != nil {
		return nil, err
	}
	var categories []model.Category
	err := s.tx.DB(ctx).Scopes(ownership.ScopeForRead(p)).
		Order("sort_order ASC").Order("created_at ASC").Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperror.Internal("list categories", err)
	}
	return categories, nil
}

// Create adds a category at the end of the tenant's list
func (s *CategoryService) Create(ctx context.Context, p *principal.Principal, name string) (c *model.Category, err error) {
	defer func() { observe(ctx, "category", "create", err) }()

	if err := ownership.Authorize(p, ownership.ResourceCategory, ownership.ActionCreate); err != nil {
		return nil, err
	}
	name, err = requireName(name, minCategoryName)
	if err != nil {
		return nil, err
	}

	var category model.Category
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Category{}).Scopes(ownership.ScopeForRead(p)).Count(&n).Error; err != nil {
			return apperror.Internal("count categories", err)
		}
		order := int(n)
		category = model.Category{
			ID:        idgen.New(idgen.Category),
			OwnerID:   p.ParentID,
			CreatorID: p.ID,
			Name:      name,
			SortOrder: &order,
		}
		if err := tx.Create(&category).Error; err != nil {
			return apperror.Internal("create category", err)
		}
		return nil
	}, txn.Named("create_category"))
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Rename changes the name of a category in the tenant
func (s *CategoryService) Rename(ctx context.Context, p *principal.Principal, id, name string) (c *model.Category, err error) {
	defer func() { observe(ctx, "category", "update", err) }()

	if err := ownership.Authorize(p, ownership.ResourceCategory, ownership.ActionUpdate); err != nil {
		return nil, err
	}
	name, err = requireName(name, minCategoryName)
	if err != nil {
		return nil, err
	}

	var category model.Category
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := ownership.FetchScoped(tx, p, &category, id, "category"); err != nil {
			return err
		}
		if err := tx.Model(&category).Update("name", name).Error; err != nil {
			return apperror.Internal("rename category", err)
		}
		return nil
	}, txn.Named("rename_category"))
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category that is nobody's default and holds no products
func (s *CategoryService) Delete(ctx context.Context, p *principal.Principal, id string) (err error) {
	defer func() { observe(ctx, "category", "delete", err) }()

	if err := ownership.Authorize(p, ownership.ResourceCategory, ownership.ActionDelete); err != nil {
		return err
	}

	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		var category model.Category
		if err := ownership.FetchScoped(tx, p, &category, id, "category"); err != nil {
			return err
		}

		var siblingDefaults []*string
		err := tx.Model(&model.User{}).
			Where("parent_id = ?", p.ParentID).
			Pluck("default_category_id", &siblingDefaults).Error
		if err != nil {
			return apperror.Internal("load tenant users", err)
		}
		for _, d := range siblingDefaults {
			if d != nil && *d == category.ID {
				return apperror.Forbidden("cannot delete default category")
			}
		}

		n, err := productsIn(tx, category.ID)
		if err != nil {
			return apperror.Internal("count products", err)
		}
		if n > 0 {
			return apperror.BadRequest("category still has products")
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperror.Internal("delete category", err)
		}
		return nil
	}, txn.Named("delete_category"))
}

func productsIn(tx *gorm.DB, categoryID string) (int64, error) {
	var n int64
	err := tx.Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

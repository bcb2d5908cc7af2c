// Package bootstrap gives every new user a tenant and a default category.
package bootstrap

import (
	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/identity"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/pkg/idgen"

	"gorm.io/gorm"
)

// Hook is an identity.Hook. A root signup gets a fresh "<name>'s Category"
// and becomes its own parent; a child copies the parent's tenant and
// default category.
func Hook(tx *gorm.DB, user *model.User, parent *identity.ParentContext) error {
	if parent != nil {
		return joinTenant(tx, user, parent)
	}
	return createTenant(tx, user)
}

func createTenant(tx *gorm.DB, user *model.User) error {
	first := 0
	category := model.Category{
		ID:        idgen.New(idgen.Category),
		OwnerID:   user.ID,
		CreatorID: user.ID,
		Name:      model.DefaultCategoryName(user.Name),
		SortOrder: &first,
	}
	if err := tx.Create(&category).Error; err != nil {
		return apperror.Internal("create default category", err)
	}

	err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"parent_id":           user.ID,
		"default_category_id": category.ID,
	}).Error
	if err != nil {
		return apperror.Internal("set default category", err)
	}

	user.ParentID = user.ID
	user.DefaultCategoryID = &category.ID
	return nil
}

func joinTenant(tx *gorm.DB, user *model.User, parent *identity.ParentContext) error {
	if parent.ParentID == "" || parent.DefaultCategoryID == "" {
		return apperror.Internal("default category missing", nil)
	}

	err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"parent_id":           parent.ParentID,
		"default_category_id": parent.DefaultCategoryID,
	}).Error
	if err != nil {
		return apperror.Internal("join tenant", err)
	}

	user.ParentID = parent.ParentID
	defaultCategoryID := parent.DefaultCategoryID
	user.DefaultCategoryID = &defaultCategoryID
	return nil
}

// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/pkg/config"
	"github.com/AR-Project/wpt-v3/pkg/database"
	"github.com/AR-Project/wpt-v3/pkg/idgen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		LogLevel:   gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateRoot inserts a bootstrapped root user with its default category
func CreateRoot(t testing.TB, db *gorm.DB, name string) *principal.Principal {
	t.Helper()
	return createUser(t, db, name, model.RoleAdmin, nil)
}

// CreateChild inserts a user inside parent's tenant
func CreateChild(t testing.TB, db *gorm.DB, parent *principal.Principal, name, role string) *principal.Principal {
	t.Helper()
	return createUser(t, db, name, role, parent)
}

func createUser(t testing.TB, db *gorm.DB, name, role string, parent *principal.Principal) *principal.Principal {
	t.Helper()
	user := model.User{
		ID:            idgen.New(idgen.User),
		Name:          name,
		Email:         idgen.New("mail") + "@example.com",
		PasswordHash:  "x",
		SignInAllowed: true,
		Role:          role,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if parent == nil {
			user.ParentID = user.ID
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			category := model.Category{
				ID:        idgen.New(idgen.Category),
				OwnerID:   user.ID,
				CreatorID: user.ID,
				Name:      model.DefaultCategoryName(name),
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			user.DefaultCategoryID = &category.ID
			return tx.Model(&user).Update("default_category_id", category.ID).Error
		}
		user.ParentID = parent.ParentID
		user.DefaultCategoryID = &parent.DefaultCategoryID
		return tx.Create(&user).Error
	})
	require.NoError(t, err)

	p, err := principal.Sanitize(&user)
	require.NoError(t, err)
	return p
}

// CreateCategory inserts a category owned by p's tenant
func CreateCategory(t testing.TB, db *gorm.DB, p *principal.Principal, name string) *model.Category {
	t.Helper()
	c := model.Category{ID: idgen.New(idgen.Category), OwnerID: p.ParentID, CreatorID: p.ID, Name: name}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

// CreateProduct inserts a product at sortOrder without touching its neighbours
func CreateProduct(t testing.TB, db *gorm.DB, p *principal.Principal, categoryID, name string, sortOrder int) *model.Product {
	t.Helper()
	prod := model.Product{
		ID:         idgen.New(idgen.Product),
		OwnerID:    p.ParentID,
		CreatorID:  p.ID,
		CategoryID: categoryID,
		Name:       name,
		SortOrder:  sortOrder,
	}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

// CreateVendor inserts a vendor owned by p's tenant
func CreateVendor(t testing.TB, db *gorm.DB, p *principal.Principal, name string) *model.Vendor {
	t.Helper()
	v := model.Vendor{ID: idgen.New(idgen.Vendor), OwnerID: p.ParentID, CreatorID: p.ID, Name: name}
	require.NoError(t, db.Create(&v).Error)
	return &v
}

// CreateImage inserts an image row without a blob
func CreateImage(t testing.TB, db *gorm.DB, p *principal.Principal) *model.Image {
	t.Helper()
	id := idgen.New(idgen.Image)
	img := model.Image{
		ID:        id,
		OwnerID:   p.ParentID,
		CreatorID: p.ID,
		Key:       "fixture/" + id + ".jpg",
		URL:       "/api/image/file/fixture/" + id + ".jpg",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&img).Error)
	return &img
}

// SortOrders returns member ids of a category keyed by sort order
func SortOrders(t testing.TB, db *gorm.DB, categoryID string) map[string]int {
	t.Helper()
	var products []model.Product
	require.NoError(t, db.Where("category_id = ?", categoryID).Find(&products).Error)
	out := make(map[string]int, len(products))
	for _, p := range products {
		out[p.ID] = p.SortOrder
	}
	return out
}

package service

import (
	"testing"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreateAndList(t *testing.T) {
	f := setup(t)

	c1, err := f.svc.Category.Create(f.ctx, f.ada, "Pantry")
	require.NoError(t, err)
	c2, err := f.svc.Category.Create(f.ctx, f.ada, "Freezer")
	require.NoError(t, err)

	assert.Equal(t, f.ada.ParentID, c1.OwnerID)
	assert.Equal(t, f.ada.ID, c1.CreatorID)
	assert.Equal(t, 1, *c1.SortOrder, "default category holds slot 0")
	assert.Equal(t, 2, *c2.SortOrder)

	_, err = f.svc.Category.Create(f.ctx, f.ada, "ab")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	eve := testutil.CreateRoot(t, f.db, "Eve")
	list, err := f.svc.Category.List(f.ctx, eve)
	require.NoError(t, err)
	require.Len(t, list, 1, "tenants never see each other's categories")
	assert.Equal(t, eve.DefaultCategoryID, list[0].ID)

	list, err = f.svc.Category.List(f.ctx, f.ada)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCategoryRename(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateChild(t, f.db, f.ada, "Bob", model.RoleStaff)
	eve := testutil.CreateRoot(t, f.db, "Eve")
	c := testutil.CreateCategory(t, f.db, f.ada, "Pantry")

	renamed, err := f.svc.Category.Rename(f.ctx, bob, c.ID, "Larder")
	require.NoError(t, err)
	assert.Equal(t, "Larder", renamed.Name)

	_, err = f.svc.Category.Rename(f.ctx, eve, c.ID, "Stolen")
	assert.ErrorIs(t, err, apperror.Forbidden("category not exist"))
}

func TestCategoryDeleteGuardsDefault(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateChild(t, f.db, f.ada, "Bob", model.RoleManager)

	for _, actor := range []*principal.Principal{f.ada, bob} {
		err := f.svc.Category.Delete(f.ctx, actor, f.ada.DefaultCategoryID)
		assert.ErrorIs(t, err, apperror.Forbidden("cannot delete default category"), actor.Name)
	}

	var n int64
	require.NoError(t, f.db.Model(&model.Category{}).Where("id = ?", f.ada.DefaultCategoryID).Count(&n).Error)
	assert.Equal(t, int64(1), n, "default category still exists")
}

func TestCategoryDelete(t *testing.T) {
	f := setup(t)
	eve := testutil.CreateRoot(t, f.db, "Eve")
	c := testutil.CreateCategory(t, f.db, f.ada, "Pantry")

	err := f.svc.Category.Delete(f.ctx, eve, c.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("category not exist"))

	prod := testutil.CreateProduct(t, f.db, f.ada, c.ID, "Rice", 0)
	err = f.svc.Category.Delete(f.ctx, f.ada, c.ID)
	assert.ErrorIs(t, err, apperror.BadRequest("category still has products"))

	require.NoError(t, f.db.Delete(prod).Error)
	require.NoError(t, f.svc.Category.Delete(f.ctx, f.ada, c.ID))

	err = f.svc.Category.Delete(f.ctx, f.ada, c.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("category not exist"))
}

func TestCategoryRolePolicy(t *testing.T) {
	f := setup(t)
	staff := testutil.CreateChild(t, f.db, f.ada, "Sam", model.RoleStaff)
	guest := testutil.CreateChild(t, f.db, f.ada, "Gia", model.RoleGuest)
	c := testutil.CreateCategory(t, f.db, f.ada, "Pantry")

	assert.ErrorIs(t, f.svc.Category.Delete(f.ctx, staff, c.ID), apperror.Forbidden("role not allowed"))
	_, err := f.svc.Category.Create(f.ctx, guest, "Garage")
	assert.ErrorIs(t, err, apperror.Forbidden("role not allowed"))

	_, err = f.svc.Category.List(f.ctx, guest)
	assert.NoError(t, err)
}

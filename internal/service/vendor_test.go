package service

import (
	"testing"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorCRUD(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateChild(t, f.db, f.ada, "Bob", model.RoleManager)

	v, err := f.svc.Vendor.Create(f.ctx, f.ada, "Acme")
	require.NoError(t, err)
	assert.Equal(t, f.ada.ParentID, v.OwnerID)

	list, err := f.svc.Vendor.List(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := f.svc.Vendor.Update(f.ctx, f.ada, v.ID, ptr("Acme Corp"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	_, err = f.svc.Vendor.Update(f.ctx, f.ada, v.ID, nil)
	assert.ErrorIs(t, err, apperror.BadRequest("no update data provided"))

	_, err = f.svc.Vendor.Update(f.ctx, bob, v.ID, ptr("Mine"))
	assert.ErrorIs(t, err, apperror.Forbidden("user not allowed"))

	err = f.svc.Vendor.Delete(f.ctx, bob, v.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("user not allowed"))

	err = f.svc.Vendor.Delete(f.ctx, f.ada, "ven_missing")
	assert.ErrorIs(t, err, apperror.Forbidden("vendor not exist"))

	require.NoError(t, f.svc.Vendor.Delete(f.ctx, f.ada, v.ID))
	list, err = f.svc.Vendor.List(f.ctx, f.ada)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVendorDeleteRefusedWhenUsed(t *testing.T) {
	f := setup(t)
	v := testutil.CreateVendor(t, f.db, f.ada, "Acme")
	p := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "Rice", 0)

	_, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, CreatePurchaseOrderInput{
		VendorID:      v.ID,
		PurchaseItems: []PurchaseItemInput{{ProductID: p.ID, Quantity: 1, CostPrice: 100}},
	})
	require.NoError(t, err)

	err = f.svc.Vendor.Delete(f.ctx, f.ada, v.ID)
	assert.ErrorIs(t, err, apperror.BadRequest("vendor used by purchase order"))

	err = f.svc.Product.Delete(f.ctx, f.ada, p.ID)
	assert.ErrorIs(t, err, apperror.BadRequest("product used by purchase order"))
}

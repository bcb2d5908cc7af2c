package service

import (
	"math"
	"testing"
	"time"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderTwoItems(t *testing.T) {
	f := setup(t)
	v1 := testutil.CreateVendor(t, f.db, f.ada, "v1")
	p1 := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p1", 0)
	p2 := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p2", 1)
	orderedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	po, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, CreatePurchaseOrderInput{
		VendorID:  v1.ID,
		OrderedAt: &orderedAt,
		PurchaseItems: []PurchaseItemInput{
			{ProductID: p1.ID, Quantity: 4, CostPrice: 5000},
			{ProductID: p2.ID, Quantity: 2, CostPrice: 15000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), po.TotalCost)

	got, err := f.svc.PurchaseOrder.Get(f.ctx, f.ada, po.ID)
	require.NoError(t, err)
	require.Len(t, got.PurchaseItems, 2)
	assert.True(t, orderedAt.Equal(got.OrderedAt))

	first, second := got.PurchaseItems[0], got.PurchaseItems[1]
	assert.Equal(t, p1.ID, first.ProductID)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 4, first.Quantity)
	assert.Equal(t, p2.ID, second.ProductID)
	assert.Equal(t, 1, second.SortOrder)
	for _, item := range got.PurchaseItems {
		assert.Equal(t, po.ID, item.PurchaseOrderID)
		assert.Equal(t, v1.ID, item.VendorID)
		assert.Equal(t, f.ada.ID, item.CreatorID)
		assert.Equal(t, f.ada.ParentID, item.OwnerID)
	}
}

func TestPurchaseOrderForeignProductRejectsWholeOrder(t *testing.T) {
	f := setup(t)
	eve := testutil.CreateRoot(t, f.db, "Eve")
	v := testutil.CreateVendor(t, f.db, f.ada, "v1")
	mine := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p1", 0)
	theirs := testutil.CreateProduct(t, f.db, eve, eve.DefaultCategoryID, "p2", 0)

	_, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, CreatePurchaseOrderInput{
		VendorID: v.ID,
		PurchaseItems: []PurchaseItemInput{
			{ProductID: mine.ID, Quantity: 1, CostPrice: 1},
			{ProductID: theirs.ID, Quantity: 1, CostPrice: 1},
		},
	})
	assert.ErrorIs(t, err, apperror.BadRequest("(some) product(s) ID invalid"))

	var orders, items int64
	require.NoError(t, f.db.Model(&model.PurchaseOrder{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&model.PurchaseItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestPurchaseOrderValidation(t *testing.T) {
	f := setup(t)
	eve := testutil.CreateRoot(t, f.db, "Eve")
	v := testutil.CreateVendor(t, f.db, f.ada, "v1")
	foreignVendor := testutil.CreateVendor(t, f.db, eve, "v2")
	foreignImage := testutil.CreateImage(t, f.db, eve)
	p := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p1", 0)
	line := []PurchaseItemInput{{ProductID: p.ID, Quantity: 1, CostPrice: 1}}

	cases := map[string]struct {
		in  CreatePurchaseOrderInput
		msg string
	}{
		"foreign vendor": {CreatePurchaseOrderInput{VendorID: foreignVendor.ID, PurchaseItems: line}, "vendor ID invalid"},
		"missing vendor": {CreatePurchaseOrderInput{VendorID: "ven_missing", PurchaseItems: line}, "vendor ID invalid"},
		"foreign image":  {CreatePurchaseOrderInput{VendorID: v.ID, ImageID: &foreignImage.ID, PurchaseItems: line}, "image ID invalid"},
		"no items":       {CreatePurchaseOrderInput{VendorID: v.ID}, "at least one purchase item required"},
		"zero quantity": {CreatePurchaseOrderInput{VendorID: v.ID, PurchaseItems: []PurchaseItemInput{
			{ProductID: p.ID, Quantity: 0, CostPrice: 1},
		}}, "quantity must be positive"},
		"line overflow": {CreatePurchaseOrderInput{VendorID: v.ID, PurchaseItems: []PurchaseItemInput{
			{ProductID: p.ID, Quantity: 3, CostPrice: math.MaxInt64 / 2},
		}}, "purchase item cost too large"},
		"total overflow": {CreatePurchaseOrderInput{VendorID: v.ID, PurchaseItems: []PurchaseItemInput{
			{ProductID: p.ID, Quantity: 1, CostPrice: math.MaxInt64 - 1},
			{ProductID: p.ID, Quantity: 1, CostPrice: 2},
		}}, "totalCost too large"},
	}
	for name, tc := range cases {
		_, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, tc.in)
		assert.ErrorIs(t, err, apperror.BadRequest(tc.msg), name)
	}
}

func TestPurchaseOrderDuplicateProductLines(t *testing.T) {
	f := setup(t)
	v := testutil.CreateVendor(t, f.db, f.ada, "v1")
	p := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p1", 0)
	img := testutil.CreateImage(t, f.db, f.ada)
	total := int64(7)

	po, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, CreatePurchaseOrderInput{
		VendorID:  v.ID,
		TotalCost: &total,
		ImageID:   &img.ID,
		PurchaseItems: []PurchaseItemInput{
			{ProductID: p.ID, Quantity: 1, CostPrice: 1},
			{ProductID: p.ID, Quantity: 2, CostPrice: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, total, po.TotalCost)
	require.NotNil(t, po.ImageID)
	assert.Equal(t, img.ID, *po.ImageID)
	assert.Len(t, po.PurchaseItems, 2)
}

func TestPurchaseOrderDeleteAndReorder(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateChild(t, f.db, f.ada, "Bob", model.RoleManager)
	v := testutil.CreateVendor(t, f.db, f.ada, "v1")
	p1 := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p1", 0)
	p2 := testutil.CreateProduct(t, f.db, f.ada, f.ada.DefaultCategoryID, "p2", 1)

	po, err := f.svc.PurchaseOrder.Create(f.ctx, f.ada, CreatePurchaseOrderInput{
		VendorID: v.ID,
		PurchaseItems: []PurchaseItemInput{
			{ProductID: p1.ID, Quantity: 1, CostPrice: 1},
			{ProductID: p2.ID, Quantity: 1, CostPrice: 1},
		},
	})
	require.NoError(t, err)
	itemIDs := []string{po.PurchaseItems[1].ID, po.PurchaseItems[0].ID}

	require.NoError(t, f.svc.PurchaseOrder.ReorderItems(f.ctx, bob, po.ID, itemIDs))
	got, err := f.svc.PurchaseOrder.Get(f.ctx, f.ada, po.ID)
	require.NoError(t, err)
	assert.Equal(t, p2.ID, got.PurchaseItems[0].ProductID)
	assert.Equal(t, 0, got.PurchaseItems[0].SortOrder)

	err = f.svc.PurchaseOrder.ReorderItems(f.ctx, f.ada, po.ID, itemIDs[:1])
	assert.ErrorIs(t, err, apperror.BadRequest("purchase item id(s) different from purchase order"))

	err = f.svc.PurchaseOrder.Delete(f.ctx, bob, po.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("user not allowed"))

	require.NoError(t, f.svc.PurchaseOrder.Delete(f.ctx, f.ada, po.ID))
	_, err = f.svc.PurchaseOrder.Get(f.ctx, f.ada, po.ID)
	assert.ErrorIs(t, err, apperror.NotFound("purchase order not found"))

	var items int64
	require.NoError(t, f.db.Model(&model.PurchaseItem{}).Count(&items).Error)
	assert.Zero(t, items)

	list, err := f.svc.PurchaseOrder.List(f.ctx, f.ada)
	require.NoError(t, err)
	assert.Empty(t, list)
}

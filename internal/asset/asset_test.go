package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/testutil"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/blob"
	"github.com/AR-Project/wpt-v3/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errBlob = errors.New("blob store unavailable")

// flakyStore wraps a MemoryStore and fails the operations switched on
type flakyStore struct {
	*blob.MemoryStore
	failPut    bool
	failDelete bool
	failExists bool
}

func (s *flakyStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if s.failPut {
		return errBlob
	}
	return s.MemoryStore.Put(ctx, key, r, contentType)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errBlob
	}
	return s.MemoryStore.Delete(ctx, key)
}

func (s *flakyStore) Exists(ctx context.Context, key string) (bool, error) {
	if s.failExists {
		return false, errBlob
	}
	return s.MemoryStore.Exists(ctx, key)
}

type fixture struct {
	db    *gorm.DB
	store *flakyStore
	svc   *Service
	ctx   context.Context
	ada   *principal.Principal
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := &flakyStore{MemoryStore: blob.NewMemoryStore()}
	svc := NewService(txn.NewManager(db, config.TxConfig{}), store, 64)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("X", -2*3600)) }
	return &fixture{db: db, store: store, svc: svc, ctx: context.Background(), ada: testutil.CreateRoot(t, db, "Ada")}
}

func jpeg(n int) []byte {
	b := bytes.Repeat([]byte{0x01}, n)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return b
}

func countImages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Image{}).Count(&n).Error)
	return n
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 1, 9, 1, 0, 0, 0, time.FixedZone("Y", 3*3600))
	assert.Equal(t, "2024/01/08/img_1.jpg", Key(at, "img_1"))
}

func TestCreateStoresRowAndBlob(t *testing.T) {
	f := setup(t)

	img, err := f.svc.Create(f.ctx, f.ada, Upload{FileName: "receipt.jpg", Body: bytes.NewReader(jpeg(32))})
	require.NoError(t, err)

	assert.Equal(t, "2024/03/06/"+img.ID+".jpg", img.Key)
	assert.Equal(t, URLPrefix+img.Key, img.URL)
	assert.Equal(t, f.ada.ParentID, img.OwnerID)
	assert.Equal(t, "receipt.jpg", img.OriginalFileName)

	ok, err := f.store.Exists(f.ctx, img.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), countImages(t, f.db))
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	cases := map[string]struct {
		body io.Reader
		msg  string
	}{
		"nil":       {nil, "image is required"},
		"empty":     {bytes.NewReader(nil), "image is empty"},
		"too large": {bytes.NewReader(jpeg(65)), "image too large"},
		"png":       {bytes.NewReader([]byte("\x89PNG\r\n\x1a\n")), "image must be a JPEG"},
	}
	for name, tc := range cases {
		_, err := f.svc.Create(f.ctx, f.ada, Upload{Body: tc.body})
		assert.ErrorIs(t, err, apperror.BadRequest(tc.msg), name)
	}
	assert.Zero(t, countImages(t, f.db))
	assert.Zero(t, f.store.Len())
}

func TestCreateBlobFailureLeavesNoRow(t *testing.T) {
	f := setup(t)
	f.store.failPut = true

	_, err := f.svc.Create(f.ctx, f.ada, Upload{Body: bytes.NewReader(jpeg(8))})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.ErrorIs(t, err, errBlob)
	assert.Zero(t, countImages(t, f.db))
}

func TestCreateGuestDenied(t *testing.T) {
	f := setup(t)
	guest := testutil.CreateChild(t, f.db, f.ada, "Gus", model.RoleGuest)

	_, err := f.svc.Create(f.ctx, guest, Upload{Body: bytes.NewReader(jpeg(8))})
	assert.ErrorIs(t, err, apperror.Forbidden("role not allowed"))
}

func TestDelete(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateChild(t, f.db, f.ada, "Bob", model.RoleManager)
	img, err := f.svc.Create(f.ctx, f.ada, Upload{Body: bytes.NewReader(jpeg(8))})
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx, bob, img.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("user not allowed"))

	err = f.svc.Delete(f.ctx, f.ada, "img_missing")
	assert.ErrorIs(t, err, apperror.Forbidden("image not exist"))

	f.store.failDelete = true
	err = f.svc.Delete(f.ctx, f.ada, img.ID)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, int64(1), countImages(t, f.db))

	f.store.failDelete = false
	require.NoError(t, f.svc.Delete(f.ctx, f.ada, img.ID))
	assert.Zero(t, countImages(t, f.db))
	assert.Zero(t, f.store.Len())
}

func TestDeleteMissingBlobStillRemovesRow(t *testing.T) {
	f := setup(t)
	img := testutil.CreateImage(t, f.db, f.ada)

	require.NoError(t, f.svc.Delete(f.ctx, f.ada, img.ID))
	assert.Zero(t, countImages(t, f.db))
}

func TestReconcile(t *testing.T) {
	f := setup(t)
	kept, err := f.svc.Create(f.ctx, f.ada, Upload{Body: bytes.NewReader(jpeg(8))})
	require.NoError(t, err)
	orphan := testutil.CreateImage(t, f.db, f.ada)

	missing, err := f.svc.Reconcile(f.ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, orphan.ID, missing[0].ID)
	assert.NotEqual(t, kept.ID, missing[0].ID)

	f.store.failExists = true
	_, err = f.svc.Reconcile(f.ctx)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

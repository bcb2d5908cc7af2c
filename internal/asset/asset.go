// Package asset keeps image metadata rows and their blobs in step. A row
// exists only while its blob does; blob failures undo the row write.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/ownership"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/blob"
	"github.com/AR-Project/wpt-v3/pkg/idgen"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	URLPrefix        = "/api/image/file/"
	ContentType      = "image/jpeg"
	reconcileWorkers = 8
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// Upload is one incoming image file
type Upload struct {
	FileName string
	Body     io.Reader
}

type Service struct {
	tx       *txn.Manager
	store    blob.Store
	maxBytes int64
	now      func() time.Time
}

func NewService(tx *txn.Manager, store blob.Store, maxBytes int64) *Service {
	return &Service{tx: tx, store: store, maxBytes: maxBytes, now: time.Now}
}

// Key returns the storage key for an image id created at t
func Key(t time.Time, id string) string {
	t = t.UTC()
	return fmt.Sprintf("%04d/%02d/%02d/%s.jpg", t.Year(), int(t.Month()), t.Day(), id)
}

func (s *Service) read(up Upload) ([]byte, error) {
	if up.Body == nil {
		return nil, apperror.BadRequest("image is required")
	}
	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxBytes+1))
	if err != nil {
		return nil, apperror.BadRequest("unreadable image")
	}
	switch {
	case len(data) == 0:
		return nil, apperror.BadRequest("image is empty")
	case int64(len(data)) > s.maxBytes:
		return nil, apperror.BadRequest("image too large")
	case !bytes.HasPrefix(data, jpegMagic):
		return nil, apperror.BadRequest("image must be a JPEG")
	}
	return data, nil
}

// Create stores the row then the blob, removing the row again when the blob
// write fails.
func (s *Service) Create(ctx context.Context, p *principal.Principal, up Upload) (out *model.Image, err error) {
	defer func() { prometheus.RecordOperation("image", "create", err) }()

	if err := ownership.Authorize(p, ownership.ResourceImage, ownership.ActionCreate); err != nil {
		return nil, err
	}
	data, err := s.read(up)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := idgen.New(idgen.Image)
	key := Key(now, id)
	img := model.Image{
		ID:               id,
		OwnerID:          p.ParentID,
		CreatorID:        p.ID,
		Key:              key,
		URL:              URLPrefix + key,
		OriginalFileName: up.FileName,
		CreatedAt:        now,
	}
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&img).Error; err != nil {
			return apperror.Internal("create image", err)
		}
		return nil
	}, txn.Named("create_image"))
	if err != nil {
		return nil, err
	}

	if perr := s.store.Put(ctx, key, bytes.NewReader(data), ContentType); perr != nil {
		log := logger.FromCtx(ctx).With(zap.String("image_id", id), zap.String("key", key))
		log.Warn("Blob write failed, removing image row", zap.Error(perr))

		cerr := s.removeRow(context.WithoutCancel(ctx), id)
		prometheus.RecordAssetCompensation(cerr)
		if cerr != nil {
			log.Error("Orphan image row left behind", zap.Error(cerr))
		}
		return nil, apperror.Internal("store image", errors.Join(perr, cerr))
	}
	return &img, nil
}

// Delete removes the blob first and the row only once the blob is gone.
func (s *Service) Delete(ctx context.Context, p *principal.Principal, id string) (err error) {
	defer func() { prometheus.RecordOperation("image", "delete", err) }()

	if err := ownership.Authorize(p, ownership.ResourceImage, ownership.ActionDelete); err != nil {
		return err
	}
	var img model.Image
	if err := ownership.FetchForWrite(s.tx.DB(ctx), p, &img, id, "image"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, img.Key); err != nil {
		logger.FromCtx(ctx).Error("Blob delete failed, keeping image row",
			zap.String("image_id", img.ID), zap.String("key", img.Key), zap.Error(err))
		return apperror.Internal("delete image blob", err)
	}
	return s.removeRow(ctx, img.ID)
}

func (s *Service) removeRow(ctx context.Context, id string) error {
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Image{}, "id = ?", id).Error; err != nil {
			return apperror.Internal("delete image", err)
		}
		return nil
	}, txn.Named("delete_image"))
}

// Reconcile returns every image row whose blob is missing from the store
func (s *Service) Reconcile(ctx context.Context) ([]model.Image, error) {
	var images []model.Image
	if err := s.tx.DB(ctx).Order("created_at ASC").Find(&images).Error; err != nil {
		return nil, apperror.Internal("list images", err)
	}

	missing := make([]bool, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileWorkers)
	for i := range images {
		g.Go(func() error {
			ok, err := s.store.Exists(gctx, images[i].Key)
			if err != nil {
				return fmt.Errorf("check %s: %w", images[i].Key, err)
			}
			missing[i] = !ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal("reconcile images", err)
	}

	var out []model.Image
	for i, img := range images {
		if missing[i] {
			out = append(out, img)
		}
	}
	return out, nil
}

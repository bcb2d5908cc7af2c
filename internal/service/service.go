// Package service holds the tenant-scoped write protocols. Every mutation
// runs in one txn.Manager transaction and re-fetches the rows it changes.
package service

import (
	"context"
	"strings"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"go.uber.org/zap"
)

// Services bundles every domain service
type Services struct {
	Category      *CategoryService
	Product       *ProductService
	Vendor        *VendorService
	PurchaseOrder *PurchaseOrderService
}

func New(tx *txn.Manager) *Services {
	return &Services{
		Category:      &CategoryService{tx: tx},
		Product:       &ProductService{tx: tx},
		Vendor:        &VendorService{tx: tx},
		PurchaseOrder: &PurchaseOrderService{tx: tx},
	}
}

// observe records the outcome of an operation and logs unexpected failures
func observe(ctx context.Context, entity, operation string, err error) {
	prometheus.RecordOperation(entity, operation, err)
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		logger.FromCtx(ctx).Error("Operation failed",
			zap.String("entity", entity),
			zap.String("operation", operation),
			zap.Error(err))
	}
}

func requireName(name string, min int) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < min {
		if min <= 1 {
			return "", apperror.BadRequest("name is required")
		}
		return "", apperror.BadRequest("name too short")
	}
	return name, nil
}

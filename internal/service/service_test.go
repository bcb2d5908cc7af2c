package service

import (
	"context"
	"testing"

	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/testutil"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/config"

	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc *Services
	ctx context.Context
	ada *principal.Principal
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:  db,
		svc: New(txn.NewManager(db, config.TxConfig{MaxRetries: 3})),
		ctx: context.Background(),
		ada: testutil.CreateRoot(t, db, "Ada"),
	}
}

func ptr[T any](v T) *T { return &v }

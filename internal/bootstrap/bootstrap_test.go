package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/bootstrap"
	"github.com/AR-Project/wpt-v3/internal/identity"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/testutil"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/config"
	"github.com/AR-Project/wpt-v3/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*identity.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := identity.NewService(
		txn.NewManager(db, config.TxConfig{}),
		jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "k", ExpirationHours: 1}),
	)
	svc.AfterCreate(bootstrap.Hook)
	return svc, db
}

func TestRootSignupCreatesDefaultCategory(t *testing.T) {
	svc, db := newService(t)

	user, err := svc.Create(context.Background(), identity.CreateInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct-horse",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, user.ID, user.ParentID)
	require.NotNil(t, user.DefaultCategoryID)

	var category model.Category
	require.NoError(t, db.Where("id = ?", *user.DefaultCategoryID).Take(&category).Error)
	assert.Equal(t, "Ada's Category", category.Name)
	assert.Equal(t, user.ID, category.OwnerID)
	assert.Equal(t, user.ID, category.CreatorID)

	var stored model.User
	require.NoError(t, db.Where("id = ?", user.ID).Take(&stored).Error)
	assert.Equal(t, user.ID, stored.ParentID)
	assert.Equal(t, category.ID, *stored.DefaultCategoryID)
}

func TestChildJoinsParentTenant(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ada, err := svc.Create(ctx, identity.CreateInput{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"}, nil)
	require.NoError(t, err)

	bob, err := svc.Create(ctx, identity.CreateInput{Name: "Bob", Email: "bob@example.com", Password: "correct-horse-battery"},
		&identity.ParentContext{ParentID: ada.ID, DefaultCategoryID: *ada.DefaultCategoryID})
	require.NoError(t, err)

	assert.Equal(t, ada.ID, bob.ParentID)
	assert.Equal(t, *ada.DefaultCategoryID, *bob.DefaultCategoryID)
	assert.Equal(t, model.RoleStaff, bob.Role)

	var categories int64
	require.NoError(t, db.Model(&model.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(1), categories, "no category is created for a child")
}

func TestFailingHookAbortsCreation(t *testing.T) {
	svc, db := newService(t)
	svc.AfterCreate(func(tx *gorm.DB, user *model.User, parent *identity.ParentContext) error {
		return errors.New("hook failed")
	})

	_, err := svc.Create(context.Background(), identity.CreateInput{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"}, nil)
	require.Error(t, err)

	var users, categories int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Category{}).Count(&categories).Error)
	assert.Zero(t, users)
	assert.Zero(t, categories)
}

func TestChildWithoutDefaultCategoryFails(t *testing.T) {
	svc, db := newService(t)

	_, err := svc.Create(context.Background(), identity.CreateInput{Name: "Bob", Email: "bob@example.com", Password: "correct-horse-battery"},
		&identity.ParentContext{ParentID: "usr_x"})
	assert.ErrorIs(t, err, apperror.Internal("default category missing", nil))

	var users int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

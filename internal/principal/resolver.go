package principal

import (
	"context"
	"errors"
	"time"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/pkg/jwtutil"
	"github.com/AR-Project/wpt-v3/pkg/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheSize = 1024
	cacheTTL  = time.Minute
)

// Resolver turns session tokens into principals. Tenant and default category
// never change after creation, so resolved principals are cached briefly.
type Resolver struct {
	db    *gorm.DB
	jwt   *jwtutil.JWTUtil
	cache *expirable.LRU[string, Principal]
}

func NewResolver(db *gorm.DB, jwt *jwtutil.JWTUtil) *Resolver {
	return &Resolver{
		db:    db,
		jwt:   jwt,
		cache: expirable.NewLRU[string, Principal](cacheSize, nil, cacheTTL),
	}
}

// Resolve validates token and loads the principal it was issued for
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	log := logger.FromCtx(ctx)

	claims, err := r.jwt.ValidateToken(token)
	if err != nil {
		log.Warn("Invalid or expired token", zap.Error(err))
		return nil, apperror.Unauthorized("invalid or expired token")
	}

	if p, ok := r.cache.Get(claims.UserID); ok {
		return &p, nil
	}

	p, err := r.Load(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(p.ID, *p)
	return p, nil
}

// Load reads a user by id and sanitizes it
func (r *Resolver) Load(ctx context.Context, userID string) (*Principal, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("user not found")
	}
	if err != nil {
		return nil, apperror.Internal("load user", err)
	}
	return Sanitize(&user)
}

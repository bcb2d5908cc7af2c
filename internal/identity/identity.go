// Package identity creates users and signs them in.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/ownership"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/idgen"
	"github.com/AR-Project/wpt-v3/pkg/jwtutil"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength      = 8
	MinChildPasswordLength = 10
)

// ParentContext carries the tenant a child user joins
type ParentContext struct {
	ParentID          string
	DefaultCategoryID string
}

// Hook runs inside the user-creation transaction right after the user row
// is inserted. A returned error aborts the whole creation.
type Hook func(tx *gorm.DB, user *model.User, parent *ParentContext) error

// CreateInput is the payload for a new user
type CreateInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Service creates users and issues session tokens
type Service struct {
	tx    *txn.Manager
	jwt   *jwtutil.JWTUtil
	hooks []Hook
}

func NewService(tx *txn.Manager, jwt *jwtutil.JWTUtil) *Service {
	return &Service{tx: tx, jwt: jwt}
}

// AfterCreate registers a hook run in the creation transaction
func (s *Service) AfterCreate(h Hook) {
	s.hooks = append(s.hooks, h)
}

func validate(in *CreateInput, minPassword int) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return apperror.BadRequest("name is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return apperror.BadRequest("invalid email")
	}
	if len(in.Password) < minPassword {
		return apperror.BadRequest("password too short")
	}
	if in.Role != "" && !model.ValidRole(in.Role) {
		return apperror.BadRequest("invalid role")
	}
	return nil
}

// Create inserts a user and runs the AfterCreate hooks in one transaction.
// The row starts as its own tenant root; hooks settle parent and default
// category. parent is nil for a root signup.
func (s *Service) Create(ctx context.Context, in CreateInput, parent *ParentContext) (*model.User, error) {
	log := logger.FromCtx(ctx)

	minPassword := MinPasswordLength
	if parent != nil {
		minPassword = MinChildPasswordLength
	}
	if err := validate(&in, minPassword); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleAdmin
		if parent != nil {
			in.Role = model.RoleStaff
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	var user model.User
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&model.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
			return apperror.Internal("check email", err)
		}
		if taken > 0 {
			return apperror.BadRequest("email already registered")
		}

		id := idgen.New(idgen.User)
		user = model.User{
			ID:            id,
			Name:          in.Name,
			Email:         in.Email,
			PasswordHash:  string(hash),
			Role:          in.Role,
			ParentID:      id,
			SignInAllowed: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperror.Internal("create user", err)
		}

		for _, hook := range s.hooks {
			if err := hook(tx, &user, parent); err != nil {
				return err
			}
		}

		if user.DefaultCategoryID == nil {
			return apperror.Internal("default category missing", nil)
		}
		return nil
	}, txn.Named("create_user"))
	prometheus.RecordOperation("user", "create", err)
	if err != nil {
		log.Warn("Failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	log.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("parent_id", user.ParentID),
		zap.String("role", user.Role))
	return &user, nil
}

// CreateChild creates a user inside p's tenant. parentID must name p itself.
func (s *Service) CreateChild(ctx context.Context, p *principal.Principal, parentID string, in CreateInput) (*model.User, error) {
	if err := ownership.Authorize(p, ownership.ResourceUser, ownership.ActionCreate); err != nil {
		return nil, err
	}
	if parentID != p.ID {
		return nil, apperror.Forbidden("user not allowed")
	}
	if in.Role == model.RoleAdmin && p.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("role not allowed")
	}
	return s.Create(ctx, in, &ParentContext{
		ParentID:          p.ParentID,
		DefaultCategoryID: p.DefaultCategoryID,
	})
}

// SignIn checks credentials and issues a session token
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *principal.Principal, error) {
	token, p, err := s.signIn(ctx, email, password)
	prometheus.RecordAuthAttempt(err)
	return token, p, err
}

func (s *Service) signIn(ctx context.Context, email, password string) (string, *principal.Principal, error) {
	log := logger.FromCtx(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.tx.DB(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info("Sign-in for unknown email", zap.String("email", email))
		return "", nil, apperror.Unauthorized("invalid email or password")
	}
	if err != nil {
		return "", nil, apperror.Internal("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Info("Sign-in with wrong password", zap.String("user_id", user.ID))
		return "", nil, apperror.Unauthorized("invalid email or password")
	}
	if !user.SignInAllowed {
		return "", nil, apperror.Forbidden("sign in not allowed")
	}

	p, err := principal.Sanitize(&user)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, apperror.Internal("generate token", err)
	}
	return token, p, nil
}

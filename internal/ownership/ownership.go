// Package ownership decides which rows a principal may read and write.
//
// Reads are tenant wide: every row whose owner is the principal's tenant root.
// Writes are creator only: a row may be changed by the principal that created it.
package ownership

import (
	"errors"
	"reflect"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/principal"

	"gorm.io/gorm"
)

// ScopeForRead restricts a query to rows owned by p's tenant
func ScopeForRead(p *principal.Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", p.ParentID)
	}
}

// CanWrite reports whether p created e
func CanWrite(p *principal.Principal, e model.Owned) bool {
	return !isNil(e) && e.GetCreatorID() == p.ID
}

// CheckWrite fails Forbidden when e is absent or was created by someone else.
// what names the entity in the "<what> not exist" message.
func CheckWrite(p *principal.Principal, e model.Owned, what string) error {
	if isNil(e) {
		return apperror.Forbidden(what + " not exist")
	}
	if !CanWrite(p, e) {
		return apperror.Forbidden("user not allowed")
	}
	return nil
}

// FetchForWrite loads dst by primary key and applies CheckWrite
func FetchForWrite(tx *gorm.DB, p *principal.Principal, dst model.Owned, id, what string) error {
	err := tx.Where("id = ?", id).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CheckWrite(p, nil, what)
	}
	if err != nil {
		return apperror.Internal("load "+what, err)
	}
	return CheckWrite(p, dst, what)
}

// FetchScoped loads dst by primary key within p's tenant. Missing rows fail
// Forbidden("<what> not exist").
func FetchScoped(tx *gorm.DB, p *principal.Principal, dst model.Owned, id, what string) error {
	err := tx.Scopes(ScopeForRead(p)).Where("id = ?", id).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Forbidden(what + " not exist")
	}
	if err != nil {
		return apperror.Internal("load "+what, err)
	}
	return nil
}

func isNil(e model.Owned) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

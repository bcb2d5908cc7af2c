// Package ordering keeps members of a scope (products in a category, items
// in a purchase order) densely numbered 0..n-1 by sort_order.
//
// Append counts members and must run in the same transaction as the insert
// that uses the count; it locks the scope row first so two appends to one
// scope serialise.
package ordering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/txn"

	"gorm.io/gorm"
)

// Collection describes one ordered relation
type Collection struct {
	ScopeTable  string
	ScopeName   string
	MemberTable string
	MemberName  string
	ScopeColumn string
}

var (
	// Products in a category
	Products = Collection{
		ScopeTable:  "categories",
		ScopeName:   "category",
		MemberTable: "products",
		MemberName:  "product",
		ScopeColumn: "category_id",
	}

	// PurchaseItems in a purchase order
	PurchaseItems = Collection{
		ScopeTable:  "purchase_orders",
		ScopeName:   "purchase order",
		MemberTable: "purchase_items",
		MemberName:  "purchase item",
		ScopeColumn: "purchase_order_id",
	}
)

type scopeRow struct {
	ID      string
	OwnerID string
}

func (c Collection) members(tx *gorm.DB, scopeID string) *gorm.DB {
	return tx.Table(c.MemberTable).Where(c.ScopeColumn+" = ?", scopeID)
}

// lockScope reads the scope row with a row lock. Missing scopes return gorm.ErrRecordNotFound.
func (c Collection) lockScope(tx *gorm.DB, scopeID string) (*scopeRow, error) {
	var row scopeRow
	err := txn.ForUpdate(tx.Table(c.ScopeTable)).
		Select("id", "owner_id").
		Where("id = ?", scopeID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Count returns the number of members in scope
func (c Collection) Count(tx *gorm.DB, scopeID string) (int, error) {
	var n int64
	if err := c.members(tx, scopeID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// Append returns the sort order for a member about to be inserted at the end
// of scope: the current member count.
func (c Collection) Append(tx *gorm.DB, scopeID string) (int, error) {
	if _, err := c.lockScope(tx, scopeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFound(c.ScopeName + " not found")
		}
		return 0, apperror.Internal("lock "+c.ScopeName, err)
	}
	n, err := c.Count(tx, scopeID)
	if err != nil {
		return 0, apperror.Internal("count "+c.MemberName, err)
	}
	return n, nil
}

// IDs returns member ids in sort order
func (c Collection) IDs(tx *gorm.DB, scopeID string) ([]string, error) {
	var ids []string
	err := c.members(tx, scopeID).Order("sort_order ASC").Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// Reorder rewrites the sort order of every member of scope to its index in
// ids. ids must hold exactly the current members; otherwise nothing changes.
func (c Collection) Reorder(tx *gorm.DB, p *principal.Principal, scopeID string, ids []string) error {
	scope, err := c.lockScope(tx, scopeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(c.ScopeName + " not found")
	}
	if err != nil {
		return apperror.Internal("load "+c.ScopeName, err)
	}
	if scope.OwnerID != p.ParentID {
		return apperror.Forbidden("user not allowed")
	}

	current, err := c.IDs(tx, scopeID)
	if err != nil {
		return apperror.Internal("load "+c.MemberName+" ids", err)
	}
	if !SameElements(current, ids) {
		return apperror.BadRequest(fmt.Sprintf("%s id(s) different from %s", c.MemberName, c.ScopeName))
	}
	if len(ids) == 0 {
		return nil
	}

	expr, vars := caseExpr(ids)
	err = c.members(tx, scopeID).
		Where("id IN ?", ids).
		UpdateColumn("sort_order", gorm.Expr(expr, vars...)).Error
	if err != nil {
		return apperror.Internal("reorder "+c.MemberName, err)
	}
	return nil
}

// caseExpr builds CASE id WHEN ? THEN ? ... END mapping each id to its index
func caseExpr(ids []string) (string, []interface{}) {
	var b strings.Builder
	vars := make([]interface{}, 0, len(ids)*2)
	b.WriteString("CASE id")
	for i, id := range ids {
		b.WriteString(" WHEN ? THEN CAST(? AS INTEGER)")
		vars = append(vars, id, i)
	}
	b.WriteString(" END")
	return b.String(), vars
}

// Remove closes the gap left at position after a member was deleted
func (c Collection) Remove(tx *gorm.DB, scopeID string, position int) error {
	err := c.members(tx, scopeID).
		Where("sort_order > ?", position).
		UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
	if err != nil {
		return apperror.Internal("compact "+c.MemberName, err)
	}
	return nil
}

// Move places memberID, currently at from, at index to and shifts the
// members in between by one.
func (c Collection) Move(tx *gorm.DB, scopeID, memberID string, from, to int) error {
	n, err := c.Count(tx, scopeID)
	if err != nil {
		return apperror.Internal("count "+c.MemberName, err)
	}
	if to < 0 || to >= n {
		return apperror.BadRequest(fmt.Sprintf("sortOrder must be between 0 and %d", n-1))
	}
	if to == from {
		return nil
	}

	shift := c.members(tx, scopeID).Where("id <> ?", memberID)
	if to < from {
		err = shift.Where("sort_order >= ? AND sort_order < ?", to, from).
			UpdateColumn("sort_order", gorm.Expr("sort_order + 1")).Error
	} else {
		err = shift.Where("sort_order > ? AND sort_order <= ?", from, to).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
	}
	if err != nil {
		return apperror.Internal("shift "+c.MemberName, err)
	}

	err = tx.Table(c.MemberTable).Where("id = ?", memberID).UpdateColumn("sort_order", to).Error
	if err != nil {
		return apperror.Internal("move "+c.MemberName, err)
	}
	return nil
}

// SameElements reports whether a and b hold the same ids with the same
// multiplicity, in any order.
func SameElements(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

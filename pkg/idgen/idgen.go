// Package idgen produces the prefixed string identifiers used as primary keys.
package idgen

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Prefixes for each entity type.
const (
	User          = "usr"
	Category      = "cat"
	Product       = "prd"
	Vendor        = "ven"
	Image         = "img"
	PurchaseOrder = "po"
	PurchaseItem  = "pi"
)

// New returns prefix + "_" + 16 lowercase hex characters drawn from a random UUID.
func New(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:8])
}

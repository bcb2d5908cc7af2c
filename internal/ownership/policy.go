package ownership

import (
	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/model"
	"github.com/AR-Project/wpt-v3/internal/principal"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resources guarded by the role policy
const (
	ResourceUser          = "user"
	ResourceCategory      = "category"
	ResourceProduct       = "product"
	ResourceVendor        = "vendor"
	ResourceImage         = "image"
	ResourcePurchaseOrder = "purchase_order"
)

var policy = map[string]map[Action]bool{
	model.RoleAdmin:   {ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true},
	model.RoleManager: {ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true},
	model.RoleStaff:   {ActionCreate: true, ActionRead: true, ActionUpdate: true},
	model.RoleGuest:   {ActionRead: true},
}

// Authorize checks p's role against the action before any store access.
// Only admins and managers may create users.
func Authorize(p *principal.Principal, resource string, action Action) error {
	if p == nil {
		return apperror.Unauthorized("missing principal")
	}
	if resource == ResourceUser && action != ActionRead &&
		p.Role != model.RoleAdmin && p.Role != model.RoleManager {
		return apperror.Forbidden("role not allowed")
	}
	if !policy[p.Role][action] {
		return apperror.Forbidden("role not allowed")
	}
	return nil
}

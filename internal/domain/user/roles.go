// internal/domain/user/roles.go
package user

// Role names a fixed position in the staff/customer hierarchy.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleDelivery  Role = "delivery"
	RoleSupport   Role = "support"
	RoleMarketing Role = "marketing"
	RoleSeller    Role = "seller"
	RoleFinance   Role = "finance"
	RoleAdmin     Role = "admin"
)

// Capability is a named permission a role grants.
type Capability string

const (
	CapManageUsers          Capability = "manage_users"
	CapManageProducts       Capability = "manage_products"
	CapManageOrders         Capability = "manage_orders"
	CapManageDiscounts      Capability = "manage_discounts"
	CapManageCoupons        Capability = "manage_coupons"
	CapManageCampaigns      Capability = "manage_campaigns"
	CapViewReports          Capability = "view_reports"
	CapViewOrders           Capability = "view_orders"
	CapViewPayments         Capability = "view_payments"
	CapUpdateStock          Capability = "update_stock"
	CapBrowseProducts       Capability = "browse_products"
	CapPlaceOrder           Capability = "place_order"
	CapManageTickets        Capability = "manage_tickets"
	CapProcessRefunds       Capability = "process_refunds"
	CapUpdateDeliveryStatus Capability = "update_delivery_status"
)

type grant struct {
	level        int
	capabilities []Capability
}

// roleGrants is the single source of truth for authorization. It is a
// pure lookup resolved at check time, never copied onto user rows, so a
// role's grants can change without a data migration.
var roleGrants = map[Role]grant{
	RoleAdmin: {
		level: 7,
		capabilities: []Capability{
			CapManageUsers, CapManageProducts, CapManageOrders,
			CapManageDiscounts, CapManageCoupons, CapViewReports,
		},
	},
	RoleFinance: {
		level:        6,
		capabilities: []Capability{CapViewPayments, CapProcessRefunds, CapViewReports},
	},
	RoleSeller: {
		level:        5,
		capabilities: []Capability{CapManageProducts, CapViewOrders, CapUpdateStock},
	},
	RoleMarketing: {
		level:        4,
		capabilities: []Capability{CapManageCoupons, CapManageCampaigns},
	},
	RoleSupport: {
		level:        3,
		capabilities: []Capability{CapManageTickets, CapProcessRefunds},
	},
	RoleDelivery: {
		level:        2,
		capabilities: []Capability{CapUpdateDeliveryStatus},
	},
	RoleCustomer: {
		level:        1,
		capabilities: []Capability{CapBrowseProducts, CapPlaceOrder, CapViewOrders},
	},
}

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleGrants[r]
	return ok
}

// Level returns the role's rank; unknown roles rank as customer.
func (r Role) Level() int {
	if g, ok := roleGrants[r]; ok {
		return g.level
	}
	return roleGrants[RoleCustomer].level
}

// Capabilities returns the capabilities the role grants; unknown roles
// fall back to the customer grants.
func (r Role) Capabilities() []Capability {
	if g, ok := roleGrants[r]; ok {
		return g.capabilities
	}
	return roleGrants[RoleCustomer].capabilities
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	for _, granted := range r.Capabilities() {
		if granted == c {
			return true
		}
	}
	return false
}

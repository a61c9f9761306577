// internal/domain/user/roles_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCan(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapManageDiscounts, true},
		{RoleAdmin, CapUpdateDeliveryStatus, false},
		{RoleMarketing, CapManageCoupons, true},
		{RoleMarketing, CapManageDiscounts, false},
		{RoleSeller, CapManageProducts, true},
		{RoleSeller, CapManageUsers, false},
		{RoleFinance, CapProcessRefunds, true},
		{RoleSupport, CapProcessRefunds, true},
		{RoleDelivery, CapUpdateDeliveryStatus, true},
		{RoleCustomer, CapPlaceOrder, true},
		{RoleCustomer, CapManageProducts, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Can(tt.cap), "%s / %s", tt.role, tt.cap)
	}
}

func TestUnknownRoleFallsBackToCustomer(t *testing.T) {
	mystery := Role("mystery")

	assert.False(t, mystery.IsValid())
	assert.Equal(t, RoleCustomer.Level(), mystery.Level())
	assert.Equal(t, RoleCustomer.Capabilities(), mystery.Capabilities())
	assert.True(t, mystery.Can(CapBrowseProducts))
	assert.False(t, mystery.Can(CapManageUsers))
}

func TestRoleLevels(t *testing.T) {
	assert.Greater(t, RoleAdmin.Level(), RoleFinance.Level())
	assert.Greater(t, RoleFinance.Level(), RoleSeller.Level())
	assert.Greater(t, RoleSeller.Level(), RoleMarketing.Level())
	assert.Greater(t, RoleMarketing.Level(), RoleSupport.Level())
	assert.Greater(t, RoleSupport.Level(), RoleDelivery.Level())
	assert.Greater(t, RoleDelivery.Level(), RoleCustomer.Level())
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleCustomer, RoleDelivery, RoleSupport, RoleMarketing, RoleSeller, RoleFinance, RoleAdmin} {
		assert.True(t, role.IsValid(), string(role))
	}
	assert.False(t, Role("").IsValid())
}

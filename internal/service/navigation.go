package service

import (
	"slices"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
)

type navEntry struct {
	section domain.NavSection
	roles   []domain.Role // empty: every role
}

var navigation = []navEntry{
	{section: domain.NavSection{Key: "dashboard", Title: "Dashboard", Path: "/", Group: "main"}},

	{section: domain.NavSection{Key: "products", Title: "Products", Path: "/products", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},
	{section: domain.NavSection{Key: "categories", Title: "Categories", Path: "/categories", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},
	{section: domain.NavSection{Key: "warehouses", Title: "Warehouses", Path: "/warehouses", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},
	{section: domain.NavSection{Key: "stock", Title: "Stock", Path: "/stock", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},
	{section: domain.NavSection{Key: "movements", Title: "Movements", Path: "/movements", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},
	{section: domain.NavSection{Key: "transfers", Title: "Transfers", Path: "/transfers", Group: "inventory"}, roles: []domain.Role{domain.RoleWarehouse}},

	{section: domain.NavSection{Key: "finance-accounts", Title: "Accounts", Path: "/finance/accounts", Group: "finance"}, roles: []domain.Role{domain.RoleAccountant}},
	{section: domain.NavSection{Key: "finance-transactions", Title: "Transactions", Path: "/finance/transactions", Group: "finance"}, roles: []domain.Role{domain.RoleAccountant}},

	{section: domain.NavSection{Key: "hr-attendance", Title: "Attendance", Path: "/hr/attendance", Group: "hr"}, roles: []domain.Role{domain.RoleHR}},
	{section: domain.NavSection{Key: "hr-payroll", Title: "Payroll", Path: "/hr/payroll", Group: "hr"}, roles: []domain.Role{domain.RoleHR}},
}

// Navigation returns the sections visible to role, in menu order. Admins see
// everything.
func Navigation(role domain.Role) domain.Navigation {
	nav := domain.Navigation{Role: role, Sections: []domain.NavSection{}}
	for _, e := range navigation {
		if role == domain.RoleAdmin || len(e.roles) == 0 || slices.Contains(e.roles, role) {
			nav.Sections = append(nav.Sections, e.section)
		}
	}
	return nav
}

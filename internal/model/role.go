package model

// Permission codes checked by the route guard
const (
	PermManageInventory  = "manage_inventory"
	PermViewInventory    = "view_inventory"
	PermManageSales      = "manage_sales"
	PermViewSalesHistory = "view_sales_history"
	PermManageUsers      = "manage_users"
	PermApproveUploads   = "approve_uploads"
	PermUploadExcel      = "upload_excel"
	PermManageCategories = "manage_categories"
	PermManageSystem     = "manage_system"
)

// AllPermissions lists every permission code, in display order
var AllPermissions = []string{
	PermManageInventory,
	PermViewInventory,
	PermManageSales,
	PermViewSalesHistory,
	PermManageUsers,
	PermApproveUploads,
	PermUploadExcel,
	PermManageCategories,
	PermManageSystem,
}

// ValidRole reports whether role is one the backend accepts for user management
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

package model

// RoleWildcard in a nav item's role list makes the item visible to everyone.
const RoleWildcard = "*"

// NavItem is one destination in the application menu. Roles are matched
// case-insensitively; Department, when set, additionally requires the
// tenant to have that department enabled.
type NavItem struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Roles      []string `json:"roles"`
	Department string   `json:"department,omitempty"`
}

// Department names referenced by navigation and tenant settings.
const (
	DepartmentLaboratory = "Laboratory"
	DepartmentPharmacy   = "Pharmacy"
	DepartmentAdmissions = "Admissions"
	DepartmentMaternity  = "Maternity"
	DepartmentInsurance  = "Insurance"
	DepartmentImaging    = "Imaging"
)

// DefaultNavItems is the static menu registry in declared order. The access
// filter prunes it per role and tenant; it never re-sorts.
var DefaultNavItems = []NavItem{
	{ID: "dashboard", Label: "Dashboard", Roles: []string{RoleWildcard}},
	{ID: "patients", Label: "Patients", Roles: []string{"owner", "admin", "doctor", "nurse", "viewer"}},
	{ID: "appointments", Label: "Appointments", Roles: []string{"owner", "admin", "doctor", "nurse"}},
	{ID: "triage", Label: "Triage Queue", Roles: []string{"owner", "admin", "nurse"}},
	{ID: "consultation", Label: "Doctor Consultation", Roles: []string{"owner", "admin", "doctor"}},
	{ID: "lab", Label: "Lab Module", Roles: []string{"owner", "admin", "doctor", "lab"}, Department: DepartmentLaboratory},
	{ID: "pharmacy", Label: "Pharmacy", Roles: []string{"owner", "admin", "doctor", "pharmacy"}, Department: DepartmentPharmacy},
	{ID: "billing", Label: "Billing & Cashier", Roles: []string{"owner", "admin", "cashier"}},
	{ID: "insurance", Label: "Insurance Claims", Roles: []string{"owner", "admin", "cashier"}, Department: DepartmentInsurance},
	{ID: "admissions", Label: "Inpatient / Admissions", Roles: []string{"owner", "admin", "doctor", "nurse"}, Department: DepartmentAdmissions},
	{ID: "maternity", Label: "Maternity / ANC", Roles: []string{"owner", "admin", "doctor", "nurse"}, Department: DepartmentMaternity},
	{ID: "reports", Label: "Reports", Roles: []string{"owner", "admin"}},
	{ID: "users", Label: "Staff & Roles", Roles: []string{"owner", "admin"}},
	{ID: "settings", Label: "Clinic Settings", Roles: []string{"owner", "admin"}},
}

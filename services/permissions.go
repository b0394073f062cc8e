package services

// Capability names an operation a role may perform.
type Capability string

const (
	CapProjectsWrite  Capability = "projects.write"
	CapQuotesWrite    Capability = "quotes.write"
	CapProductsWrite  Capability = "products.write"
	CapProductsImport Capability = "products.import"
	CapPOWrite        Capability = "po.write"
	CapInvoicesWrite  Capability = "invoices.write"
	CapCapacityWrite  Capability = "capacity.write"
	CapSageExport     Capability = "invoices.sage_export"
)

// rolePermissions is the static role → capability table. Roles do not nest,
// so a single membership test is all a check needs. Reads are open to every
// role; only mutations are gated.
var rolePermissions = map[string]map[Capability]bool{
	"admin": {
		CapProjectsWrite:  true,
		CapQuotesWrite:    true,
		CapProductsWrite:  true,
		CapProductsImport: true,
		CapPOWrite:        true,
		CapInvoicesWrite:  true,
		CapCapacityWrite:  true,
		CapSageExport:     true,
	},
	"office": {
		CapProjectsWrite:  true,
		CapQuotesWrite:    true,
		CapProductsWrite:  true,
		CapProductsImport: true,
		CapPOWrite:        true,
		CapInvoicesWrite:  true,
		CapSageExport:     true,
	},
	"workshop": {
		CapProductsWrite: true,
	},
	"readonly": {},
}

// HasCapability reports whether role may perform cap. Unknown roles have no
// capabilities.
func HasCapability(role string, cap Capability) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[cap]
}

// KnownRole reports whether role exists in the permission table.
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

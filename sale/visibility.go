package sale

// Role is the caller identity supplied by the presentation layer. The core
// never authenticates it; it is only used for read-time filtering and for
// the upload gate applied by the API layer.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCorretor  Role = "corretor"
	RoleComprador Role = "comprador"
	RoleVendedor  Role = "vendedor"
	RoleParceiro  Role = "parceiro"
)

// categoryRoles is the static category→role visibility table. Admin and
// corretor see everything; buyer and seller see their own paperwork plus
// the property's; partners only see property documents.
var categoryRoles = map[ItemCategory][]Role{
	CategoryProperty: {RoleAdmin, RoleCorretor, RoleComprador, RoleVendedor, RoleParceiro},
	CategorySeller:   {RoleAdmin, RoleCorretor, RoleVendedor},
	CategoryBuyer:    {RoleAdmin, RoleCorretor, RoleComprador},
}

// RoleCanAccess reports whether the role may view or upload a file for
// items of the given category.
func RoleCanAccess(role Role, category ItemCategory) bool {
	for _, r := range categoryRoles[category] {
		if r == role {
			return true
		}
	}
	return false
}

// FilterForRole returns a deep copy of the process with document URLs
// blanked on checklist items the role may not access. Item presence and
// status stay visible so the stepper can still be rendered; only the files
// themselves are withheld. The original record is never mutated.
func FilterForRole(p Process, role Role) Process {
	out := p
	out.Steps = make([]Step, len(p.Steps))
	for i, step := range p.Steps {
		cp := step
		if step.RGI != nil {
			rgi := *step.RGI
			rgi.History = append([]RGIHistoryEntry(nil), step.RGI.History...)
			cp.RGI = &rgi
		}
		cp.Checklist = make([]ChecklistItem, len(step.Checklist))
		for j, item := range step.Checklist {
			ci := item
			if item.FileURL != nil {
				url := *item.FileURL
				ci.FileURL = &url
			}
			if !RoleCanAccess(role, item.Category) {
				ci.FileURL = nil
			}
			cp.Checklist[j] = ci
		}
		out.Steps[i] = cp
	}
	return out
}

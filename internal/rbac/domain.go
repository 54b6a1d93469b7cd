// Package rbac implements the role based permission matrix: which actions a
// role may exercise on each application module.
package rbac

// ModuleID identifies a top-level functional area used as the unit of grants.
type ModuleID string

const (
	ModuleDashboard            ModuleID = "dashboard"
	ModuleQuotations           ModuleID = "quotations"
	ModuleBookings             ModuleID = "bookings"
	ModuleMonitoring           ModuleID = "monitoring"
	ModuleCashAdvance          ModuleID = "cash_advance"
	ModuleBilling              ModuleID = "billing"
	ModuleCollectionMonitoring ModuleID = "collection_monitoring"
	ModuleApprovals            ModuleID = "approvals"
	ModuleReports              ModuleID = "reports"
	ModuleAdminUsers           ModuleID = "admin_users"
	ModuleMasterSetup          ModuleID = "master_setup"
)

// Action is an atomic capability within a module.
type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionExport   Action = "export"
	ActionDisburse Action = "disburse"
)

// moduleCatalog fixes the module order used for listings.
var moduleCatalog = []ModuleID{
	ModuleDashboard,
	ModuleQuotations,
	ModuleBookings,
	ModuleMonitoring,
	ModuleCashAdvance,
	ModuleBilling,
	ModuleCollectionMonitoring,
	ModuleApprovals,
	ModuleReports,
	ModuleAdminUsers,
	ModuleMasterSetup,
}

// actionCatalog fixes the action order used for listings.
var actionCatalog = []Action{
	ActionView,
	ActionCreate,
	ActionEdit,
	ActionDelete,
	ActionApprove,
	ActionReject,
	ActionExport,
	ActionDisburse,
}

// applicable declares, per module, which actions make sense at all. An action
// outside this set is "not applicable" for the module: it can never be
// granted and must not be conflated with an ordinary denial.
var applicable = map[ModuleID][]Action{
	ModuleDashboard:            {ActionView},
	ModuleQuotations:           {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionReject, ActionExport},
	ModuleBookings:             {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExport},
	ModuleMonitoring:           {ActionView, ActionEdit, ActionExport},
	ModuleCashAdvance:          {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionReject, ActionDisburse},
	ModuleBilling:              {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExport},
	ModuleCollectionMonitoring: {ActionView, ActionEdit, ActionExport},
	ModuleApprovals:            {ActionView, ActionApprove, ActionReject},
	ModuleReports:              {ActionView, ActionExport},
	ModuleAdminUsers:           {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ModuleMasterSetup:          {ActionView, ActionCreate, ActionEdit, ActionDelete},
}

// Modules returns the fixed module catalog in display order.
func Modules() []ModuleID {
	out := make([]ModuleID, len(moduleCatalog))
	copy(out, moduleCatalog)
	return out
}

// Actions returns every action in display order.
func Actions() []Action {
	out := make([]Action, len(actionCatalog))
	copy(out, actionCatalog)
	return out
}

// KnownModule reports whether id belongs to the module catalog.
func KnownModule(id ModuleID) bool {
	_, ok := applicable[id]
	return ok
}

// KnownAction reports whether a belongs to the action catalog.
func KnownAction(a Action) bool {
	for _, known := range actionCatalog {
		if known == a {
			return true
		}
	}
	return false
}

// Applicable reports whether action is meaningful for module.
func Applicable(module ModuleID, action Action) bool {
	for _, a := range applicable[module] {
		if a == action {
			return true
		}
	}
	return false
}

// ApplicableActions returns the actions meaningful for module, in catalog order.
func ApplicableActions(module ModuleID) []Action {
	out := make([]Action, len(applicable[module]))
	copy(out, applicable[module])
	return out
}

// Decision is the tri-state outcome of a permission check. NotApplicable is
// distinct from Denied so the admin UI can render "—" instead of an unchecked
// box.
type Decision int

const (
	DecisionNotApplicable Decision = iota
	DecisionDenied
	DecisionGranted
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "not_applicable"
	}
}

// AccessLevel is a derived, display-only summary of a role's grants on one module.
type AccessLevel string

const (
	AccessFull     AccessLevel = "Full Access"
	AccessEdit     AccessLevel = "Edit Access"
	AccessCreate   AccessLevel = "Create Access"
	AccessViewOnly AccessLevel = "View Only"
	AccessNone     AccessLevel = "No Access"
)

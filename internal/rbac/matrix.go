package rbac

import "sort"

// ActionSet holds the granted actions for one module.
type ActionSet map[Action]struct{}

// Matrix maps modules to granted actions for a single role. The zero value
// (nil map) is a valid matrix that denies everything.
type Matrix map[ModuleID]ActionSet

// NewMatrix builds a Matrix from a module to action-list mapping, dropping
// unknown modules, unknown actions and grants outside the module's
// applicable-action set. Stored grants for non-applicable actions are
// meaningless and must be ignored, not surfaced as grants.
func NewMatrix(grants map[ModuleID][]Action) Matrix {
	m := make(Matrix, len(grants))
	for module, actions := range grants {
		if !KnownModule(module) {
			continue
		}
		for _, action := range actions {
			if !Applicable(module, action) {
				continue
			}
			m.Grant(module, action)
		}
	}
	return m
}

// Decide answers the tri-state permission question for module/action.
func (m Matrix) Decide(module ModuleID, action Action) Decision {
	if !KnownModule(module) || !Applicable(module, action) {
		return DecisionNotApplicable
	}
	if set, ok := m[module]; ok {
		if _, ok := set[action]; ok {
			return DecisionGranted
		}
	}
	// Absence of a module entry is an ordinary denial, not an error.
	return DecisionDenied
}

// HasPermission reports whether the action is granted. Not-applicable and
// denied both answer false.
func (m Matrix) HasPermission(module ModuleID, action Action) bool {
	return m.Decide(module, action) == DecisionGranted
}

// Grant adds an action to the module's set. Non-applicable grants are dropped.
func (m Matrix) Grant(module ModuleID, action Action) {
	if !Applicable(module, action) {
		return
	}
	set, ok := m[module]
	if !ok {
		set = make(ActionSet)
		m[module] = set
	}
	set[action] = struct{}{}
}

// Revoke removes an action from the module's set.
func (m Matrix) Revoke(module ModuleID, action Action) {
	if set, ok := m[module]; ok {
		delete(set, action)
		if len(set) == 0 {
			delete(m, module)
		}
	}
}

// Toggle flips a grant and reports the new state.
func (m Matrix) Toggle(module ModuleID, action Action) bool {
	if m.HasPermission(module, action) {
		m.Revoke(module, action)
		return false
	}
	m.Grant(module, action)
	return m.HasPermission(module, action)
}

// AccessLevel derives the display summary for one module. Priority:
// delete or approve beats edit beats create beats view.
func (m Matrix) AccessLevel(module ModuleID) AccessLevel {
	switch {
	case m.HasPermission(module, ActionDelete) || m.HasPermission(module, ActionApprove):
		return AccessFull
	case m.HasPermission(module, ActionEdit):
		return AccessEdit
	case m.HasPermission(module, ActionCreate):
		return AccessCreate
	case m.HasPermission(module, ActionView):
		return AccessViewOnly
	default:
		return AccessNone
	}
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	clone := make(Matrix, len(m))
	for module, set := range m {
		copySet := make(ActionSet, len(set))
		for action := range set {
			copySet[action] = struct{}{}
		}
		clone[module] = copySet
	}
	return clone
}

// GrantMap flattens the matrix into a module to sorted action-list mapping,
// the wire format used by the permissions endpoints.
func (m Matrix) GrantMap() map[ModuleID][]Action {
	out := make(map[ModuleID][]Action, len(m))
	for module, set := range m {
		actions := make([]Action, 0, len(set))
		for action := range set {
			actions = append(actions, action)
		}
		sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
		out[module] = actions
	}
	return out
}

// Equal reports whether two matrices carry the same grants.
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	for module, set := range m {
		otherSet, ok := other[module]
		if !ok || len(set) != len(otherSet) {
			return false
		}
		for action := range set {
			if _, ok := otherSet[action]; !ok {
				return false
			}
		}
	}
	return true
}

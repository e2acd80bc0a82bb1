// Package security provides the feature/permission vocabulary for entitlements.
//
// Features are a closed enumeration rather than free-form strings so that
// plan definitions and permission checks are exhaustive at compile time.
package security

import (
	"fmt"
)

// Feature identifies a licensable area of the application.
type Feature string

const (
	FeatureDashboard Feature = "dashboard"
	FeatureSales     Feature = "sales"
	FeatureInvoices  Feature = "invoices"
	FeatureInventory Feature = "inventory"
	FeatureCredits   Feature = "credits"
	FeatureReports   Feature = "reports"
	FeatureWorkers   Feature = "workers"
	FeatureSettings  Feature = "settings"
)

// AllFeatures returns every known feature in stable order.
func AllFeatures() []Feature {
	return []Feature{
		FeatureDashboard,
		FeatureSales,
		FeatureInvoices,
		FeatureInventory,
		FeatureCredits,
		FeatureReports,
		FeatureWorkers,
		FeatureSettings,
	}
}

// ParseFeature validates a wire-format feature name.
func ParseFeature(s string) (Feature, error) {
	for _, f := range AllFeatures() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

// Action is one of the four permission bits carried per feature.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ParseAction validates a wire-format action name.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// PermissionSet is the 4-boolean permission tuple attached to a feature,
// both in plan definitions and in per-principal permission rows.
type PermissionSet struct {
	CanView   bool `db:"can_view" json:"canView"`
	CanCreate bool `db:"can_create" json:"canCreate"`
	CanEdit   bool `db:"can_edit" json:"canEdit"`
	CanDelete bool `db:"can_delete" json:"canDelete"`
}

// Allows returns the bit matching the action. Unknown actions are denied.
func (p PermissionSet) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionCreate:
		return p.CanCreate
	case ActionEdit:
		return p.CanEdit
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

// FullAccess returns a PermissionSet with every bit granted.
func FullAccess() PermissionSet {
	return PermissionSet{CanView: true, CanCreate: true, CanEdit: true, CanDelete: true}
}

// ViewOnly returns a PermissionSet granting only view.
func ViewOnly() PermissionSet {
	return PermissionSet{CanView: true}
}

// IsEmpty reports whether no bit is granted.
func (p PermissionSet) IsEmpty() bool {
	return !p.CanView && !p.CanCreate && !p.CanEdit && !p.CanDelete
}

package models

import "fmt"

// Capability is a closed enumeration of admin capability tags. Permission
// checks go through the per-role tables below; unknown tags are rejected
// instead of silently treated as false.
type Capability string

const (
	CapManageUsers   Capability = "manage:users"
	CapManageChats   Capability = "manage:chats"
	CapManageStories Capability = "manage:stories"
	CapManageCalls   Capability = "manage:calls"
	CapManageSupport Capability = "manage:support"
	CapViewReports   Capability = "view:reports"
)

var allCapabilities = map[Capability]bool{
	CapManageUsers:   true,
	CapManageChats:   true,
	CapManageStories: true,
	CapManageCalls:   true,
	CapManageSupport: true,
	CapViewReports:   true,
}

// ParseCapability validates a capability tag.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !allCapabilities[c] {
		return "", fmt.Errorf("unknown capability %q", s)
	}
	return c, nil
}

var rolePermissions = map[Role]map[Capability]bool{
	RoleUser: {},
	RoleAdmin: {
		CapManageChats:   true,
		CapManageStories: true,
		CapManageCalls:   true,
		CapManageSupport: true,
		CapViewReports:   true,
	},
}

// PermissionsFor returns the capability set for a role. Super admins hold
// every capability.
func PermissionsFor(role Role) map[Capability]bool {
	out := make(map[Capability]bool, len(allCapabilities))
	if role == RoleSuperAdmin {
		for c := range allCapabilities {
			out[c] = true
		}
		return out
	}
	for c, ok := range rolePermissions[role] {
		if ok {
			out[c] = true
		}
	}
	return out
}

// HasCapability reports whether a role holds a capability.
func HasCapability(role Role, c Capability) bool {
	if role == RoleSuperAdmin {
		return true
	}
	return rolePermissions[role][c]
}

// ValidateRoleTables checks the role tables against the closed capability
// enumeration. Called once at startup.
func ValidateRoleTables() error {
	for role, caps := range rolePermissions {
		if !role.Valid() {
			return fmt.Errorf("permission table references unknown role %q", role)
		}
		for c := range caps {
			if _, err := ParseCapability(string(c)); err != nil {
				return fmt.Errorf("role %q: %w", role, err)
			}
		}
	}
	return nil
}

package enums

import "fmt"

// OrgRole describes what a member may do inside an organization.
type OrgRole string

const (
	OrgRoleAdmin    OrgRole = "admin"
	OrgRoleOperator OrgRole = "operator"
	OrgRoleViewer   OrgRole = "viewer"
)

var validOrgRoles = []OrgRole{
	OrgRoleAdmin,
	OrgRoleOperator,
	OrgRoleViewer,
}

// IsValid reports whether the value matches the canonical role enum.
func (r OrgRole) IsValid() bool {
	for _, candidate := range validOrgRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOrgRole converts raw input into OrgRole.
func ParseOrgRole(value string) (OrgRole, error) {
	for _, candidate := range validOrgRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid org role %q", value)
}

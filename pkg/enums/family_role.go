package enums

import "fmt"

// FamilyRole represents a family-level permissions role.
type FamilyRole string

const (
	FamilyRoleOwner  FamilyRole = "OWNER"
	FamilyRoleAdmin  FamilyRole = "ADMIN"
	FamilyRoleMember FamilyRole = "MEMBER"
	FamilyRoleViewer FamilyRole = "VIEWER"
)

// validFamilyRoles is ordered by privilege descending.
var validFamilyRoles = []FamilyRole{
	FamilyRoleOwner,
	FamilyRoleAdmin,
	FamilyRoleMember,
	FamilyRoleViewer,
}

// String implements fmt.Stringer.
func (r FamilyRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known FamilyRole.
func (r FamilyRole) IsValid() bool {
	for _, candidate := range validFamilyRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role carries the privilege of min or higher.
func (r FamilyRole) AtLeast(min FamilyRole) bool {
	rank := func(role FamilyRole) int {
		for i, candidate := range validFamilyRoles {
			if candidate == role {
				return len(validFamilyRoles) - i
			}
		}
		return 0
	}
	return rank(r) >= rank(min)
}

// ParseFamilyRole converts raw input into a FamilyRole.
func ParseFamilyRole(value string) (FamilyRole, error) {
	for _, candidate := range validFamilyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid family role %q", value)
}

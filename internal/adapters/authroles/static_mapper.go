package authroles

import (
	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
)

// StaticRoleMapper maps groups by simple string membership rules.
// The most privileged matching group wins; no match maps to Tourist.
type StaticRoleMapper struct {
	AdminGroup     string
	ResponderGroup string
	GuideGroup     string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	ranked := []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdministrator},
		{m.ResponderGroup, domainauth.RoleResponder},
		{m.GuideGroup, domainauth.RoleGuide},
	}
	for _, r := range ranked {
		if r.group == "" {
			continue
		}
		for _, g := range groups {
			if g == r.group {
				return r.role
			}
		}
	}
	return domainauth.RoleTourist
}

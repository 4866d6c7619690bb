// Package nav holds the portal's navigation matrix: which sections each role
// can see. The same matrix drives menu filtering and route gating, so the two
// can never disagree.
package nav

import "github.com/dentacamp/portal/core/session"

// Section keys
const (
	SectionDashboard  = "dashboard"
	SectionFranchises = "franchises"
	SectionSchools    = "schools"
	SectionStudents   = "students"
	SectionCamps      = "camps"
	SectionScreenings = "screenings"
	SectionReports    = "reports"
	SectionUsers      = "users"
	SectionUpload     = "upload"
)

type Section struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Path  string   `json:"path"`
	Roles []string `json:"-"`
}

// menu is the full navigation menu in display order. An empty Roles slice
// means every authenticated role.
var menu = []Section{
	{Key: SectionDashboard, Label: "Dashboard", Path: "/dashboard"},
	{Key: SectionFranchises, Label: "Franchises", Path: "/franchises", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin,
	}},
	{Key: SectionSchools, Label: "Schools", Path: "/schools", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin, session.RoleFranchiseAdmin,
	}},
	{Key: SectionStudents, Label: "Students", Path: "/students", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin, session.RoleFranchiseAdmin,
		session.RolePrincipal, session.RoleSchoolAdmin, session.RoleTeacher,
	}},
	{Key: SectionCamps, Label: "Camps", Path: "/camps", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin, session.RoleFranchiseAdmin,
		session.RolePrincipal, session.RoleSchoolAdmin, session.RoleDentist,
	}},
	{Key: SectionScreenings, Label: "Screenings", Path: "/screenings", Roles: []string{
		session.RoleSystemAdmin, session.RoleDentist,
	}},
	{Key: SectionReports, Label: "Reports", Path: "/reports", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin, session.RoleFranchiseAdmin,
		session.RolePrincipal, session.RoleSchoolAdmin, session.RoleDentist, session.RoleParent,
	}},
	{Key: SectionUsers, Label: "Users", Path: "/users", Roles: []string{
		session.RoleSystemAdmin, session.RoleOrgAdmin,
	}},
	{Key: SectionUpload, Label: "Bulk Upload", Path: "/students/upload", Roles: []string{
		session.RoleSystemAdmin, session.RoleFranchiseAdmin, session.RoleSchoolAdmin,
	}},
}

// Menu returns the full menu in display order.
func Menu() []Section {
	return append([]Section(nil), menu...)
}

// MenuFor filters the menu down to the sections the role can see, preserving
// display order.
func MenuFor(role string) []Section {
	if role == "" {
		return nil
	}
	var out []Section
	for _, s := range menu {
		if sectionAllows(s, role) {
			out = append(out, s)
		}
	}
	return out
}

// CanAccess reports whether the role may reach the section. Unknown sections
// are inaccessible.
func CanAccess(sectionKey, role string) bool {
	if role == "" {
		return false
	}
	for _, s := range menu {
		if s.Key == sectionKey {
			return sectionAllows(s, role)
		}
	}
	return false
}

func sectionAllows(s Section, role string) bool {
	if len(s.Roles) == 0 {
		return true
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

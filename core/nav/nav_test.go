package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentacamp/portal/core/session"
)

func Test_MenuFor(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{role: session.RoleSystemAdmin, want: []string{
			SectionDashboard, SectionFranchises, SectionSchools, SectionStudents,
			SectionCamps, SectionScreenings, SectionReports, SectionUsers, SectionUpload,
		}},
		{role: session.RoleOrgAdmin, want: []string{
			SectionDashboard, SectionFranchises, SectionSchools, SectionStudents,
			SectionCamps, SectionReports, SectionUsers,
		}},
		{role: session.RoleFranchiseAdmin, want: []string{
			SectionDashboard, SectionSchools, SectionStudents, SectionCamps,
			SectionReports, SectionUpload,
		}},
		{role: session.RolePrincipal, want: []string{
			SectionDashboard, SectionStudents, SectionCamps, SectionReports,
		}},
		{role: session.RoleSchoolAdmin, want: []string{
			SectionDashboard, SectionStudents, SectionCamps, SectionReports, SectionUpload,
		}},
		{role: session.RoleTeacher, want: []string{
			SectionDashboard, SectionStudents,
		}},
		{role: session.RoleDentist, want: []string{
			SectionDashboard, SectionCamps, SectionScreenings, SectionReports,
		}},
		{role: session.RoleParent, want: []string{
			SectionDashboard, SectionReports,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := MenuFor(tt.role)
			keys := make([]string, 0, len(got))
			for _, s := range got {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func Test_MenuFor_noRole(t *testing.T) {
	assert.Nil(t, MenuFor(""))
}

// CanAccess must agree with MenuFor for every role/section pair.
func Test_CanAccess_matchesMenu(t *testing.T) {
	for _, role := range session.AllRoles {
		visible := make(map[string]bool)
		for _, s := range MenuFor(role) {
			visible[s.Key] = true
		}
		for _, s := range Menu() {
			assert.Equal(t, visible[s.Key], CanAccess(s.Key, role), "role %s section %s", role, s.Key)
		}
	}
}

func Test_CanAccess_unknowns(t *testing.T) {
	assert.False(t, CanAccess("billing", session.RoleSystemAdmin))
	assert.False(t, CanAccess(SectionReports, ""))
	assert.True(t, CanAccess(SectionDashboard, "JANITOR"), "unlisted roles still get the dashboard")
}

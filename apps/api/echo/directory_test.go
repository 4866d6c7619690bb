package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentacamp/portal/core/directory"
	"github.com/dentacamp/portal/core/session"
)

func Test_directoryApi_sectionGates(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name     string
		role     string
		path     string
		wantCode int
	}{
		{"sysadmin sees franchises", session.RoleSystemAdmin, "/v1/franchises", http.StatusOK},
		{"org admin sees franchises", session.RoleOrgAdmin, "/v1/franchises", http.StatusOK},
		{"teacher cannot see franchises", session.RoleTeacher, "/v1/franchises", http.StatusForbidden},
		{"dentist cannot see schools", session.RoleDentist, "/v1/schools", http.StatusForbidden},
		{"franchise admin sees schools", session.RoleFranchiseAdmin, "/v1/schools", http.StatusOK},
		{"principal sees camps", session.RolePrincipal, "/v1/camps", http.StatusOK},
		{"parent cannot see camps", session.RoleParent, "/v1/camps", http.StatusForbidden},
		{"only admins see users", session.RoleSchoolAdmin, "/v1/users", http.StatusForbidden},
		{"sysadmin sees users", session.RoleSystemAdmin, "/v1/users", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, token := app.createSession(t, tt.role)
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.server.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_directoryApi_createFranchise(t *testing.T) {
	app := setup(t)
	_, token := app.createSession(t, session.RoleSystemAdmin)

	tests := []httpTest{
		{
			name:     "name is required",
			token:    token,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "region is required",
			token:    token,
			body:     []byte(`{"name": "Kinshasa West"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "created",
			token:    token,
			body:     []byte(`{"name": "Kinshasa West", "region": "Kinshasa"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/franchises", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
	assert.Len(t, app.api.franchises, 1)
}

func Test_directoryApi_querySchools_cached(t *testing.T) {
	app := setup(t)
	_, token := app.createSession(t, session.RoleFranchiseAdmin)
	app.api.schools["sch-1"] = directory.School{ID: "sch-1", Name: "Lycee Bosangani"}

	req, rec := newAuthRequest(http.MethodGet, "/v1/schools", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()

	// a school added behind the cache's back is not visible until invalidation
	app.api.schools["sch-2"] = directory.School{ID: "sch-2", Name: "College Mbinza"}
	req, rec = newAuthRequest(http.MethodGet, "/v1/schools", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, first, rec.Body.String())
}

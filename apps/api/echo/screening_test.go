package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentacamp/portal/core/screening"
	"github.com/dentacamp/portal/core/session"
)

func Test_screeningApi_chart(t *testing.T) {
	app := setup(t)
	_, token := app.createSession(t, session.RoleDentist)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantTeeth int
	}{
		{"default is permanent", "/v1/screenings/chart", http.StatusOK, 32},
		{"primary", "/v1/screenings/chart?dentition=primary", http.StatusOK, 20},
		{"mixed", "/v1/screenings/chart?dentition=mixed", http.StatusOK, 52},
		{"unknown dentition", "/v1/screenings/chart?dentition=wisdom", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.server.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			var chart screening.Chart
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
			assert.Len(t, chart, tt.wantTeeth)
			for _, state := range chart {
				assert.Equal(t, screening.StateHealthy, state)
			}
		})
	}
}

func Test_screeningApi_create(t *testing.T) {
	app := setup(t)
	_, token := app.createSession(t, session.RoleDentist)

	chart := screening.NewChart(screening.DentitionPermanent)
	require.NoError(t, chart.Set(11, screening.StateDecayed))

	body := marchallObj(t, screening.NewScreening{
		StudentID: "std-1",
		CampID:    "camp-1",
		Chart:     chart,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/screenings", token, body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var scr screening.Screening
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scr))
	assert.Equal(t, screening.StateDecayed, scr.Chart[11])
}

func Test_screeningApi_create_badChart(t *testing.T) {
	app := setup(t)
	_, token := app.createSession(t, session.RoleDentist)

	// FDI number 19 does not exist
	body := []byte(`{"student_id": "std-1", "camp_id": "camp-1", "chart": {"19": "decayed"}}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/screenings", token, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_screeningApi_gate(t *testing.T) {
	app := setup(t)

	// only system admins and dentists handle screenings
	_, token := app.createSession(t, session.RolePrincipal)
	req, rec := newAuthRequest(http.MethodGet, "/v1/screenings", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

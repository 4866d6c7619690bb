package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/dentacamp/portal/apps/api/echo"
	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/directory"
	"github.com/dentacamp/portal/core/report"
	"github.com/dentacamp/portal/core/screening"
	"github.com/dentacamp/portal/core/session"
	"github.com/dentacamp/portal/core/student"
	memcache "github.com/dentacamp/portal/storage/cache/inmem"
	memstore "github.com/dentacamp/portal/storage/sessionstore/inmem"
	"github.com/dentacamp/portal/tests"
)

// fakePlatform is an in-memory stand-in for the platform API.
type fakePlatform struct {
	// auth
	magicTokens map[string]string // magic token -> bearer
	accounts    map[string]session.Account
	memberships map[string][]session.Membership
	linkEmails  []string

	// directory
	franchises []directory.Franchise
	schools    map[string]directory.School
	camps      []directory.Camp
	users      []directory.User

	// students & screenings
	students   []student.Student
	screenings map[string]screening.Screening

	// reports
	reports map[string]report.Report
	pdf     string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		magicTokens: make(map[string]string),
		accounts:    make(map[string]session.Account),
		memberships: make(map[string][]session.Membership),
		schools:     make(map[string]directory.School),
		screenings:  make(map[string]screening.Screening),
		reports:     make(map[string]report.Report),
		pdf:         "%PDF-1.7 fake",
	}
}

func (f *fakePlatform) RequestMagicLink(_ context.Context, email string) error {
	f.linkEmails = append(f.linkEmails, email)
	return nil
}

func (f *fakePlatform) ConsumeMagicLink(_ context.Context, token string) (string, error) {
	bearer, ok := f.magicTokens[token]
	if !ok {
		return "", core.ErrUnauthenticated
	}
	return bearer, nil
}

func (f *fakePlatform) FetchAccount(_ context.Context, bearer string) (session.Account, error) {
	acct, ok := f.accounts[bearer]
	if !ok {
		return session.Account{}, core.ErrUnauthenticated
	}
	return acct, nil
}

func (f *fakePlatform) FetchMemberships(_ context.Context, bearer string) ([]session.Membership, error) {
	return f.memberships[bearer], nil
}

func (f *fakePlatform) CreateFranchise(_ context.Context, _ string, nf directory.NewFranchise) (directory.Franchise, error) {
	fr := directory.Franchise{ID: "fr-new", Name: nf.Name}
	f.franchises = append(f.franchises, fr)
	return fr, nil
}

func (f *fakePlatform) FilterFranchises(_ context.Context, _ string, _ directory.QueryFilter) ([]directory.Franchise, error) {
	return f.franchises, nil
}

func (f *fakePlatform) CreateSchool(_ context.Context, _ string, ns directory.NewSchool) (directory.School, error) {
	sch := directory.School{ID: "sch-new", FranchiseID: ns.FranchiseID, Name: ns.Name}
	f.schools[sch.ID] = sch
	return sch, nil
}

func (f *fakePlatform) GetSchool(_ context.Context, _ string, id string) (directory.School, error) {
	sch, ok := f.schools[id]
	if !ok {
		return directory.School{}, core.ErrNotFound
	}
	return sch, nil
}

func (f *fakePlatform) FilterSchools(_ context.Context, _ string, _ directory.QueryFilter) ([]directory.School, error) {
	out := make([]directory.School, 0, len(f.schools))
	for _, sch := range f.schools {
		out = append(out, sch)
	}
	return out, nil
}

func (f *fakePlatform) CreateCamp(_ context.Context, _ string, nc directory.NewCamp) (directory.Camp, error) {
	camp := directory.Camp{ID: "camp-new", SchoolID: nc.SchoolID, Name: nc.Name}
	f.camps = append(f.camps, camp)
	return camp, nil
}

func (f *fakePlatform) FilterCamps(_ context.Context, _ string, _ directory.QueryFilter) ([]directory.Camp, error) {
	return f.camps, nil
}

func (f *fakePlatform) FilterUsers(_ context.Context, _ string, _ directory.QueryFilter) ([]directory.User, error) {
	return f.users, nil
}

func (f *fakePlatform) CreateStudent(_ context.Context, _ string, ns student.NewStudent) (student.Student, error) {
	std := student.Student{ID: "std-new", SchoolID: ns.SchoolID, Name: ns.Name}
	f.students = append(f.students, std)
	return std, nil
}

func (f *fakePlatform) FilterStudents(_ context.Context, _ string, _ student.QueryFilter) ([]student.Student, error) {
	return f.students, nil
}

func (f *fakePlatform) BulkCreateStudents(_ context.Context, _ string, students []student.NewStudent) ([]student.Student, error) {
	out := make([]student.Student, 0, len(students))
	for i, ns := range students {
		std := student.Student{ID: "std-bulk-" + string(rune('a'+i)), SchoolID: ns.SchoolID, Name: ns.Name}
		f.students = append(f.students, std)
		out = append(out, std)
	}
	return out, nil
}

func (f *fakePlatform) CreateScreening(_ context.Context, _ string, ns screening.NewScreening) (screening.Screening, error) {
	scr := screening.Screening{ID: "scr-new", StudentID: ns.StudentID, CampID: ns.CampID, Chart: ns.Chart, Notes: ns.Notes}
	f.screenings[scr.ID] = scr
	return scr, nil
}

func (f *fakePlatform) GetScreening(_ context.Context, _ string, id string) (screening.Screening, error) {
	scr, ok := f.screenings[id]
	if !ok {
		return screening.Screening{}, core.ErrNotFound
	}
	return scr, nil
}

func (f *fakePlatform) FilterScreenings(_ context.Context, _ string, _ screening.QueryFilter) ([]screening.Screening, error) {
	out := make([]screening.Screening, 0, len(f.screenings))
	for _, scr := range f.screenings {
		out = append(out, scr)
	}
	return out, nil
}

func (f *fakePlatform) FilterReports(_ context.Context, _ string, _ report.QueryFilter) ([]report.Report, error) {
	out := make([]report.Report, 0, len(f.reports))
	for _, rpt := range f.reports {
		out = append(out, rpt)
	}
	return out, nil
}

func (f *fakePlatform) GetReport(_ context.Context, _ string, id string) (report.Report, error) {
	rpt, ok := f.reports[id]
	if !ok {
		return report.Report{}, core.ErrNotFound
	}
	return rpt, nil
}

func (f *fakePlatform) GenerateReport(_ context.Context, _ string, screeningID string) (report.Report, error) {
	rpt := report.Report{ID: "rpt-new", ScreeningID: screeningID, Status: report.StatusPending}
	f.reports[rpt.ID] = rpt
	return rpt, nil
}

func (f *fakePlatform) DownloadReport(_ context.Context, _ string, id string) (report.Download, error) {
	rpt := f.reports[id]
	return report.Download{
		Body:        io.NopCloser(strings.NewReader(f.pdf)),
		ContentType: "application/pdf",
		Filename:    rpt.Filename,
		Size:        int64(len(f.pdf)),
	}, nil
}

type fakeMailer struct{ sent []*core.EmailMessage }

func (f *fakeMailer) SendMessages(messages ...*core.EmailMessage) {
	f.sent = append(f.sent, messages...)
}

type testApp struct {
	server  Server
	api     *fakePlatform
	store   session.Store
	mailer  *fakeMailer
	conf    *core.Config
	sessSvc *session.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.NewConfig(t)
	logger := testutil.NewLogger(t)
	api := newFakePlatform()
	store := memstore.NewStore()
	cache := memcache.NewCache()
	mailer := &fakeMailer{}

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)

	sessSvc := session.NewService(store, api, conf, logger)

	server := NewServer(
		&ServerDeps{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			SessionSvc:     sessSvc,
			DirectorySvc:   directory.NewService(api, cache, conf, logger),
			StudentSvc:     student.NewService(api, cache, validate, conf, logger),
			ScreeningSvc:   screening.NewService(api, cache, conf, logger),
			ReportSvc:      report.NewService(api, cache, mailer, conf, logger),
			Validate:       validate,
			Translator:     translator,
		},
	)
	return &testApp{server: server, api: api, store: store, mailer: mailer, conf: conf, sessSvc: sessSvc}
}

func (app *testApp) createSession(t *testing.T, roles ...string) (session.Session, string) {
	t.Helper()
	sess := testutil.CreateSession(t, app.store, "Test Account", "account@test.cd", roles)
	token, err := GenerateToken(app.conf, GetSessionClaims(app.conf, sess))
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return sess, token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

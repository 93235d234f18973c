package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamsp-admin-api/internal/middleware"
	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type subjectServiceMock struct {
	getResp    *models.SubjectDetail
	listResp   *models.SubjectPage
	err        error
	lastFilter models.SubjectFilter
	lastReq    service.SubjectRequest
	lastID     int64
	calls      int
}

func (m *subjectServiceMock) Get(ctx context.Context, id int64) (*models.SubjectDetail, error) {
	m.calls++
	m.lastID = id
	return m.getResp, m.err
}

func (m *subjectServiceMock) List(ctx context.Context, filter models.SubjectFilter) (*models.SubjectPage, error) {
	m.calls++
	m.lastFilter = filter
	return m.listResp, m.err
}

func (m *subjectServiceMock) Create(ctx context.Context, req service.SubjectRequest) (*models.Subject, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Subject{ID: 1, Code: req.Code}, nil
}

func (m *subjectServiceMock) Update(ctx context.Context, id int64, req service.SubjectRequest) (*models.Subject, error) {
	m.calls++
	m.lastID = id
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Subject{ID: id}, nil
}

func (m *subjectServiceMock) Delete(ctx context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

type exporterMock struct {
	format string
	filter models.SubjectFilter
}

func (m *exporterMock) Subjects(ctx context.Context, filter models.SubjectFilter, format string) (*service.ExportFile, error) {
	m.format = format
	m.filter = filter
	return &service.ExportFile{Filename: "subjects.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("id\n1\n")}, nil
}

type envelope struct {
	Code appErrors.RespCode `json:"code"`
	Msg  string             `json:"msg"`
	Data json.RawMessage    `json:"data"`
}

func newTestContext(method, target string, body *strings.Reader, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == nil {
		req, _ = http.NewRequest(method, target, nil)
	} else {
		req, _ = http.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})
	return c, w
}

func readEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSubjectHandlerListParsesFilters(t *testing.T) {
	mockSvc := &subjectServiceMock{listResp: &models.SubjectPage{Subjects: []models.SubjectItem{{ID: 4, Code: "CS101"}}, HasMore: 1, Offset: 20}}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/subjects?ids=4,%205,&code=CS&name=Sys&offset=0", nil, "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{4, 5}, mockSvc.lastFilter.IDs)
	assert.Equal(t, "CS", mockSvc.lastFilter.Code)
	assert.Equal(t, "Sys", mockSvc.lastFilter.Name)

	env := readEnvelope(t, w)
	assert.Equal(t, appErrors.CodeSuccess, env.Code)
	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, float64(1), page["has_more"])
	assert.Equal(t, float64(20), page["offset"])
	items := page["subjects"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.NotContains(t, item, "name")
	assert.Contains(t, item, "coordinator")
}

func TestSubjectHandlerListOffsetFromForm(t *testing.T) {
	mockSvc := &subjectServiceMock{listResp: &models.SubjectPage{Subjects: []models.SubjectItem{}}}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	form := url.Values{"offset": {"40"}}
	c, w := newTestContext(http.MethodPost, "/subjects", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, mockSvc.lastFilter.Offset)
}

func TestSubjectHandlerListRejectsMalformedParams(t *testing.T) {
	for _, target := range []string{"/subjects?ids=1,x", "/subjects?ids=,,", "/subjects?offset=-3", "/subjects?offset=abc"} {
		mockSvc := &subjectServiceMock{}
		h := NewSubjectHandler(mockSvc, &exporterMock{})
		c, w := newTestContext(http.MethodGet, target, nil, "")
		h.List(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, appErrors.CodeInvalidParameter, readEnvelope(t, w).Code, target)
		assert.Zero(t, mockSvc.calls, target)
	}
}

func TestSubjectHandlerGet(t *testing.T) {
	mockSvc := &subjectServiceMock{getResp: &models.SubjectDetail{ID: 3, Code: "CS101", Supervisors: []interface{}{}, Teams: []interface{}{}}}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/subjects/3", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), mockSvc.lastID)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(readEnvelope(t, w).Data, &detail))
	assert.Equal(t, []interface{}{}, detail["supervisors"])
	assert.Nil(t, detail["coordinator"])
}

func TestSubjectHandlerGetNotFound(t *testing.T) {
	mockSvc := &subjectServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "subject not found")}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/subjects/99", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, appErrors.CodeInvalidParameter, readEnvelope(t, w).Code)
}

func TestSubjectHandlerCreateBindsForm(t *testing.T) {
	mockSvc := &subjectServiceMock{}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	form := url.Values{"code": {"CS101"}, "name": {"Systems"}, "coordinator_id": {"7"}}
	c, w := newTestContext(http.MethodPost, "/subjects", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := readEnvelope(t, w)
	assert.Equal(t, appErrors.CodeSuccess, env.Code)
	assert.Empty(t, env.Data)
	assert.Equal(t, service.SubjectRequest{Code: "CS101", Name: "Systems", CoordinatorID: 7}, mockSvc.lastReq)
}

func TestSubjectHandlerCreateBindsJSON(t *testing.T) {
	mockSvc := &subjectServiceMock{}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	payload, _ := json.Marshal(map[string]interface{}{"code": "CS101", "name": "Systems", "coordinator_id": 7})
	c, w := newTestContext(http.MethodPost, "/subjects", strings.NewReader(string(payload)), "application/json")
	h.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), mockSvc.lastReq.CoordinatorID)
}

func TestSubjectHandlerCreateMalformedCoordinator(t *testing.T) {
	mockSvc := &subjectServiceMock{}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	form := url.Values{"code": {"CS101"}, "name": {"Systems"}, "coordinator_id": {"seven"}}
	c, w := newTestContext(http.MethodPost, "/subjects", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.CodeInvalidParameter, readEnvelope(t, w).Code)
	assert.Zero(t, mockSvc.calls)
}

func TestSubjectHandlerCreateSurfacesExisted(t *testing.T) {
	mockSvc := &subjectServiceMock{err: appErrors.ErrSubjectExisted}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	form := url.Values{"code": {"CS101"}, "name": {"Systems"}, "coordinator_id": {"7"}}
	c, w := newTestContext(http.MethodPost, "/subjects", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Create(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := readEnvelope(t, w)
	assert.Equal(t, appErrors.CodeSubjectExisted, env.Code)
	assert.Equal(t, "existed subject", env.Msg)
}

func TestSubjectHandlerMutationsRequireID(t *testing.T) {
	for _, raw := range []string{"", "0", "abc", "-4"} {
		mockSvc := &subjectServiceMock{}
		h := NewSubjectHandler(mockSvc, &exporterMock{})

		form := url.Values{"code": {"CS101"}, "name": {"Systems"}, "coordinator_id": {"7"}}
		c, w := newTestContext(http.MethodPost, "/subjects/update", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		h.Update(c)
		assert.Equal(t, appErrors.CodeInvalidParameter, readEnvelope(t, w).Code, raw)

		c, w = newTestContext(http.MethodPost, "/subjects/delete", nil, "")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		h.Delete(c)
		assert.Equal(t, appErrors.CodeInvalidParameter, readEnvelope(t, w).Code, raw)

		assert.Zero(t, mockSvc.calls, raw)
	}
}

func TestSubjectHandlerUpdateAndDelete(t *testing.T) {
	mockSvc := &subjectServiceMock{}
	h := NewSubjectHandler(mockSvc, &exporterMock{})

	form := url.Values{"code": {"CS102"}, "name": {"Networks"}, "coordinator_id": {"9"}}
	c, w := newTestContext(http.MethodPost, "/subjects/5/update", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	h.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), mockSvc.lastID)
	assert.Equal(t, "CS102", mockSvc.lastReq.Code)

	c, w = newTestContext(http.MethodPost, "/subjects/6/delete", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "6"}}
	h.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(6), mockSvc.lastID)
}

func TestSubjectHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	h := NewSubjectHandler(&subjectServiceMock{}, exporter)

	c, w := newTestContext(http.MethodGet, "/subjects/export?format=csv&code=CS", nil, "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "CS", exporter.filter.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "subjects.csv")
	assert.Equal(t, "id\n1\n", w.Body.String())
}

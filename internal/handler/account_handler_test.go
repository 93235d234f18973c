package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type authServiceMock struct {
	lastReq    models.LoginRequest
	loginErr   error
	logoutUser int64
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastReq = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 60}, nil
}

func (m *authServiceMock) Logout(ctx context.Context, claims *models.JWTClaims, ip, userAgent string) error {
	m.logoutUser = claims.UserID
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{}
	h := NewAuthHandler(mockSvc)

	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	c, w := newTestContext(http.MethodPost, "/account/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", mockSvc.lastReq.Username)
	assert.Equal(t, "test-agent", mockSvc.lastReq.UserAgent)
	assert.Contains(t, string(readEnvelope(t, w).Data), "access_token")
}

func TestAuthHandlerLoginFailure(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrLoginFail})

	form := url.Values{"username": {"admin"}, "password": {"bad"}}
	c, w := newTestContext(http.MethodPost, "/account/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.CodeLoginFail, readEnvelope(t, w).Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	mockSvc := &authServiceMock{}
	h := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/account/logout", nil, "")
	h.Logout(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), mockSvc.logoutUser)
}

type teamServiceMock struct {
	createReq service.CreateTeamRequest
	memberID  int64
	memberReq service.AddMemberRequest
	err       error
}

func (m *teamServiceMock) List(ctx context.Context, filter models.TeamFilter) (*models.TeamPage, error) {
	return &models.TeamPage{Teams: []models.Team{}, Offset: filter.Offset}, m.err
}

func (m *teamServiceMock) Get(ctx context.Context, id int64) (*models.TeamDetail, error) {
	return &models.TeamDetail{Team: models.Team{ID: id}, Members: []models.Student{}}, m.err
}

func (m *teamServiceMock) Create(ctx context.Context, req service.CreateTeamRequest) (*models.Team, error) {
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Team{ID: 11}, nil
}

func (m *teamServiceMock) AddMember(ctx context.Context, teamID int64, req service.AddMemberRequest) (*models.TeamMember, error) {
	m.memberID = teamID
	m.memberReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeamMember{TeamID: teamID, StudentID: req.StudentID}, nil
}

func TestTeamHandlerCreateReturnsID(t *testing.T) {
	mockSvc := &teamServiceMock{}
	h := NewTeamHandler(mockSvc)

	form := url.Values{"name": {"Alpha"}, "project_name": {"Compiler"}, "supervisor_id": {"8"}, "expired": {"1800000000"}}
	c, w := newTestContext(http.MethodPost, "/teams", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(8), mockSvc.createReq.SupervisorID)
	assert.JSONEq(t, `{"id":11}`, string(readEnvelope(t, w).Data))
}

func TestTeamHandlerAddMember(t *testing.T) {
	mockSvc := &teamServiceMock{}
	h := NewTeamHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/teams/3/members", strings.NewReader(`{"student_id":1001}`), "application/json")
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.AddMember(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), mockSvc.memberID)
	assert.Equal(t, int64(1001), mockSvc.memberReq.StudentID)
}

func TestTeamHandlerGetRejectsBadID(t *testing.T) {
	h := NewTeamHandler(&teamServiceMock{})

	c, w := newTestContext(http.MethodGet, "/teams/x", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type studentServiceMock struct {
	filter models.StudentFilter
	req    service.CreateStudentRequest
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) (*models.StudentPage, error) {
	m.filter = filter
	return &models.StudentPage{Students: []models.Student{}}, nil
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	m.req = req
	return &models.Student{ID: req.StudentID}, nil
}

func TestStudentHandler(t *testing.T) {
	mockSvc := &studentServiceMock{}
	h := NewStudentHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/students?ids=1,2&name=An&offset=5", nil, "")
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, mockSvc.filter.IDs)
	assert.Equal(t, 5, mockSvc.filter.Offset)

	form := url.Values{"student_id": {"1001"}, "name": {"Ann"}, "email": {"ann@uni.test"}}
	c, w = newTestContext(http.MethodPost, "/students", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	h.Create(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1001), mockSvc.req.StudentID)
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type mockAuthUsers struct {
	users map[string]*models.User
}

func (m *mockAuthUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.users[username]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockSessionStore struct {
	items map[string]*models.Session
	ttls  map[string]time.Duration
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{items: map[string]*models.Session{}, ttls: map[string]time.Duration{}}
}

func (m *mockSessionStore) Save(ctx context.Context, tokenID string, session *models.Session, ttl time.Duration) error {
	m.items[tokenID] = session
	m.ttls[tokenID] = ttl
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, tokenID string) (*models.Session, error) {
	if session, ok := m.items[tokenID]; ok {
		return session, nil
	}
	return nil, appErrors.ErrSessionMissing
}

func (m *mockSessionStore) Delete(ctx context.Context, tokenID string) error {
	delete(m.items, tokenID)
	return nil
}

type mockAuditWriter struct {
	logs []models.AuditLog
}

func (m *mockAuditWriter) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func newTestAuthService(t *testing.T, sessions SessionStore) (*AuthService, *mockAuditWriter) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &mockAuthUsers{users: map[string]*models.User{
		"admin":   {ID: 1, Username: "admin", Password: string(hash), Email: "admin@uni.test", Role: models.RoleAdmin, Status: models.StatusValid},
		"retired": {ID: 2, Username: "retired", Password: string(hash), Role: models.RoleCoordinator, Status: models.StatusInvalid},
	}}
	audit := &mockAuditWriter{}
	svc := NewAuthService(users, sessions, audit, nil, nil, nil, AuthConfig{Secret: "test-secret", Issuer: "test", Expiry: time.Hour})
	return svc, audit
}

func TestAuthServiceLoginIssuesSessionToken(t *testing.T) {
	sessions := newMockSessionStore()
	svc, audit := newTestAuthService(t, sessions)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "admin", resp.User.Name)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	require.Contains(t, sessions.items, claims.ID)
	assert.Equal(t, "10.0.0.1", sessions.items[claims.ID].IP)
	assert.Equal(t, time.Hour, sessions.ttls[claims.ID])

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, audit := newTestAuthService(t, newMockSessionStore())

	cases := []models.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "ghost", Password: "secret"},
		{Username: "retired", Password: "secret"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, appErrors.CodeLoginFail, appErrors.FromError(err).Code, req.Username)
	}

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInvalidParameter, appErrors.FromError(err).Code)
	assert.Empty(t, audit.logs)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	sessions := newMockSessionStore()
	svc, _ := newTestAuthService(t, sessions)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims, "", ""))
	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotLogged, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbageAndExpiry(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotLogged, appErrors.FromError(err).Code)

	token, _, err := svc.IssueToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotLogged, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// SessionStore keeps server-side login sessions keyed by token id.
type SessionStore interface {
	Save(ctx context.Context, tokenID string, session *models.Session, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (*models.Session, error)
	Delete(ctx context.Context, tokenID string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// AuthService provides login, logout and token validation.
type AuthService struct {
	users     authUserRepository
	sessions  SessionStore
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService. A nil sessions store disables server-side revocation.
func NewAuthService(users authUserRepository, sessions SessionStore, audit auditWriter, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		audit:     audit,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
		now:       time.Now,
	}
}

// Login authenticates a valid user by username and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	resp, err := s.login(ctx, req)
	s.metrics.RecordLogin(err == nil)
	return resp, err
}

func (s *AuthService) login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrLoginFail, "invalid username or password")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}
	if user.Status != models.StatusValid {
		return nil, appErrors.Clone(appErrors.ErrLoginFail, "account is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrLoginFail, "invalid username or password")
	}

	token, claims, err := s.IssueToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	if s.sessions != nil {
		session := &models.Session{
			UserID:    user.ID,
			Role:      user.Role,
			IP:        req.IP,
			UserAgent: req.UserAgent,
			IssuedAt:  claims.IssuedAt.Time,
		}
		if err := s.sessions.Save(ctx, claims.ID, session, s.config.Expiry); err != nil {
			return nil, appErrors.Internal(err, "failed to store session")
		}
	}

	s.record(ctx, user.ID, models.AuditActionLogin, req.IP, req.UserAgent)

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiry.Seconds()),
		User: models.UserInfo{
			ID:    user.ID,
			Name:  user.DisplayName(),
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

// Logout removes the session behind claims so the token stops passing the gate.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims, ip, userAgent string) error {
	if claims == nil {
		return appErrors.ErrNotLogged
	}
	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, claims.ID); err != nil {
			return appErrors.Internal(err, "failed to delete session")
		}
	}
	s.record(ctx, claims.UserID, models.AuditActionLogout, ip, userAgent)
	return nil
}

// IssueToken signs an HS256 access token for user with a fresh token id.
func (s *AuthService) IssueToken(user *models.User) (string, *models.JWTClaims, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken parses an access token and, when sessions are enabled, checks it was not logged out.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotLogged.Code, appErrors.ErrNotLogged.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrNotLogged, "invalid token claims")
	}

	if s.sessions != nil {
		if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
			if errors.Is(err, appErrors.ErrSessionMissing) {
				return nil, appErrors.Clone(appErrors.ErrNotLogged, "session expired")
			}
			return nil, appErrors.Internal(err, "failed to load session")
		}
	}

	return claims, nil
}

func (s *AuthService) record(ctx context.Context, userID int64, action, ip, userAgent string) {
	if s.audit == nil {
		return
	}
	uid := userID
	resourceID := fmt.Sprintf("%d", userID)
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &uid,
		Action:     action,
		Resource:   "account",
		ResourceID: &resourceID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

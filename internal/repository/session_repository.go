package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepository keeps login sessions in Redis keyed by token id.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Save stores the session until ttl elapses.
func (r *SessionRepository) Save(ctx context.Context, tokenID string, session *models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", tokenID, err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+tokenID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", tokenID, err)
	}
	return nil
}

// Get loads a session. A missing key yields appErrors.ErrSessionMissing.
func (r *SessionRepository) Get(ctx context.Context, tokenID string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+tokenID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionMissing
		}
		return nil, fmt.Errorf("redis get session %s: %w", tokenID, err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", tokenID, err)
	}
	return &session, nil
}

// Delete removes a session; deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", tokenID, err)
	}
	return nil
}

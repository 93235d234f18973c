package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
)

type syncAuditStore struct {
	mu      sync.Mutex
	actions []string
	failN   int
}

func (s *syncAuditStore) Create(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failN > 0 {
		s.failN--
		return errors.New("db down")
	}
	s.actions = append(s.actions, log.Action)
	return nil
}

func TestAuditDispatcherFlushesOnStop(t *testing.T) {
	store := &syncAuditStore{}
	d := NewAuditDispatcher(store, 2, nil)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Create(context.Background(), &models.AuditLog{Action: models.AuditActionSubjectCreate}))
	}
	d.Stop()

	assert.Len(t, store.actions, 5)
}

func TestAuditDispatcherRetriesFailedWrite(t *testing.T) {
	store := &syncAuditStore{failN: 1}
	d := NewAuditDispatcher(store, 1, nil)
	d.Start(context.Background())

	require.NoError(t, d.Create(context.Background(), &models.AuditLog{Action: models.AuditActionSubjectDelete}))
	d.Stop()

	assert.Equal(t, []string{models.AuditActionSubjectDelete}, store.actions)
}

func TestAuditDispatcherWritesInlineWhenStopped(t *testing.T) {
	store := &syncAuditStore{}
	d := NewAuditDispatcher(store, 1, nil)

	require.NoError(t, d.Create(context.Background(), &models.AuditLog{Action: models.AuditActionLogin}))
	assert.Equal(t, []string{models.AuditActionLogin}, store.actions)
}

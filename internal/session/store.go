// Package session owns the server-side session: the portal bearer token
// sealed at rest in Redis, the student identity, and the client-facing JWT.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/attendix/backend/internal/models"
	"github.com/attendix/backend/pkg/utils"
)

// ErrNotFound means the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the server-side state for one logged-in student.
type Session struct {
	ID          uuid.UUID             `json:"id"`
	Student     models.StudentProfile `json:"student"`
	SealedToken string                `json:"sealed_token"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Store keeps sessions in Redis with a TTL. The portal token is sealed
// before it is written so it is never stored in the clear.
type Store struct {
	client *redis.Client
	sealer *utils.Sealer
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a session store.
func NewStore(client *redis.Client, sealer *utils.Sealer, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, sealer: sealer, ttl: ttl, logger: logger}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func snapshotKey(id uuid.UUID) string {
	return "session:" + id.String() + ":attendance"
}

// Create seals the portal token and writes a new session.
func (s *Store) Create(ctx context.Context, student models.StudentProfile, portalToken string) (*Session, error) {
	sealed, err := s.sealer.Seal(portalToken)
	if err != nil {
		return nil, fmt.Errorf("seal portal token: %w", err)
	}
	sess := &Session{
		ID:          uuid.New(),
		Student:     student,
		SealedToken: sealed,
		CreatedAt:   time.Now(),
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), raw, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Get loads a session by ID. Returns ErrNotFound when missing or expired.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session and its attendance snapshot.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(id), snapshotKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PortalToken recovers the plaintext portal token for upstream calls.
func (s *Store) PortalToken(sess *Session) (string, error) {
	return s.sealer.Open(sess.SealedToken)
}

// SaveSnapshot replaces the session's attendance snapshot wholesale. One
// snapshot per session, nothing survives the session itself: the snapshot
// key inherits the session key's remaining TTL.
func (s *Store) SaveSnapshot(ctx context.Context, id uuid.UUID, rows []models.CourseAttendance) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	ttl := s.ttl
	if remaining, err := s.client.TTL(ctx, sessionKey(id)).Result(); err == nil && remaining > 0 {
		ttl = remaining
	}
	if err := s.client.Set(ctx, snapshotKey(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the session's last attendance snapshot, if any.
func (s *Store) GetSnapshot(ctx context.Context, id uuid.UUID) ([]models.CourseAttendance, bool, error) {
	raw, err := s.client.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	var rows []models.CourseAttendance
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return rows, true, nil
}

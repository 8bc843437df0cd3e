package service

import (
	"Inbox/internal/kv"
	"Inbox/internal/model"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL — срок жизни сессии, если в конфиге не задан другой.
const DefaultSessionTTL = 7 * 24 * time.Hour

const sessionKeyPrefix = "session:"

// sessionRecord — то, что лежит в KV под ключом session:<token>.
type sessionRecord struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"` // unix millis
}

// SessionStore хранит серверные сессии в KV-хранилище.
// Продления нет: срок задаётся один раз при создании.
type SessionStore struct {
	kv  kv.Store
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(store kv.Store, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{kv: store, ttl: ttl, now: time.Now}
}

// TTL возвращает срок жизни новых сессий.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create выпускает новый токен для пользователя.
func (s *SessionStore) Create(ctx context.Context, userID string) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl).UTC().Truncate(time.Millisecond),
	}
	raw, err := json.Marshal(sessionRecord{UserID: userID, ExpiresAt: sess.ExpiresAt.UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+token, raw, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Lookup находит сессию по токену. Истёкшая запись удаляется прямо здесь,
// поэтому следующий вызов вернёт уже ErrSessionNotFound.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	key := sessionKeyPrefix + token
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.UserID == "" {
		// битая запись бесполезна — удаляем
		_ = s.kv.Delete(ctx, key)
		return nil, ErrSessionNotFound
	}
	sess := &model.Session{Token: token, UserID: rec.UserID, ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC()}
	if sess.Expired(s.now()) {
		if err := s.kv.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("purge session: %w", err)
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Delete удаляет сессию; отсутствие записи ошибкой не считается.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Delete(ctx, sessionKeyPrefix+token)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

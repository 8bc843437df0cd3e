package service

import (
	"Inbox/internal/crypto"
	"Inbox/internal/model"
	"Inbox/internal/repo"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MinPasswordLength — минимальная длина пароля при регистрации и смене пароля.
const MinPasswordLength = 6

// InviteConfig — настройки регистрации по инвайт-коду.
type InviteConfig struct {
	Required bool
	Code     string
}

// RegisterInput — данные формы регистрации.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	InviteCode string
}

// PasswordHasher — то, что сервису нужно от хешера паролей (*crypto.Hasher).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	// VerifyDummy тратит столько же времени, сколько Verify, для входа с неизвестным email.
	VerifyDummy(password string)
}

var _ PasswordHasher = (*crypto.Hasher)(nil)

// UserService — регистрация, вход/выход и разрешение сессии в пользователя.
type UserService struct {
	repo     repo.UserRepository
	sessions *SessionStore
	hasher   PasswordHasher
	invite   InviteConfig
	now      func() time.Time
}

func NewUserService(r repo.UserRepository, sessions *SessionStore, hasher PasswordHasher, invite InviteConfig) *UserService {
	return &UserService{repo: r, sessions: sessions, hasher: hasher, invite: invite, now: time.Now}
}

// Sessions отдаёт хранилище сессий (нужен TTL для cookie).
func (s *UserService) Sessions() *SessionStore { return s.sessions }

// Register создаёт пользователя. Вход при этом не выполняется.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if err := s.checkInvite(in.InviteCode); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		CreatedAt:    s.now().UTC(),
	}
	created, err := s.repo.CreateUser(ctx, u)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// параллельная регистрация успела раньше и упёрлась в уникальный индекс
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) checkInvite(code string) error {
	if !s.invite.Required {
		return nil
	}
	// без серверного кода регистрация закрыта, а не открыта для всех
	if s.invite.Code == "" {
		return ErrInviteNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.invite.Code)) != 1 {
		return ErrInvalidInvite
	}
	return nil
}

// Login проверяет пароль и открывает новую сессию.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.VerifyDummy(password)
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil, ErrWrongPassword
	}
	sess, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Logout удаляет сессию. Повторный вызов безопасен.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate превращает токен в пользователя. Нет сессии, она истекла
// или пользователь удалён — ErrUnauthenticated.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// Me возвращает профиль текущего пользователя.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// ChangePassword меняет пароль после проверки текущего. Открытые сессии не трогаются.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return ErrWrongPassword
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

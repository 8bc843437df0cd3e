// Package fs хранит сессию CLI на диске пользователя.
package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken — сохранённой сессии нет.
var ErrNoToken = errors.New("not logged in")

// Credentials — то, что переживает перезапуск CLI.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// TokenStore — файловое хранилище токена сессии и последнего email.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path — файл, в который пишется токен.
func (s *TokenStore) Path() string { return s.path }

// Save сохраняет токен. Каталог создаётся с правами 0700, файл — 0600.
func (s *TokenStore) Save(c Credentials) error {
	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	// пишем во временный файл и переименовываем, чтобы не оставить обрезанный токен
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load читает сохранённую сессию. Нет файла или пустой токен — ErrNoToken.
func (s *TokenStore) Load() (Credentials, error) {
	var c Credentials
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, ErrNoToken
	}
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("corrupt token file %s: %w", s.path, err)
	}
	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		return c, ErrNoToken
	}
	return c, nil
}

// LastEmail — email последнего входа, пустая строка если неизвестен.
func (s *TokenStore) LastEmail() string {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var c Credentials
	if json.Unmarshal(b, &c) != nil {
		return ""
	}
	return c.Email
}

// Clear забывает токен, оставляя email для подсказки при следующем входе.
func (s *TokenStore) Clear() error {
	email := s.LastEmail()
	if email == "" {
		err := os.Remove(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	b, err := json.Marshal(Credentials{Email: email})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

package model

import "time"

// Session — активная сессия пользователя. Хранится в KV-хранилище, а не в таблице.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

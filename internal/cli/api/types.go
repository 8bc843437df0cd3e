package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedResponse — ответ сервера не совпал с ожидаемой формой.
var ErrMalformedResponse = errors.New("malformed response")

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Block struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Position  int64      `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type Image struct {
	ID        string    `json:"id"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Position — элемент запроса на перестановку.
type Position struct {
	ID       string `json:"id"`
	Position int64  `json:"position"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// Конверты ответов: отсутствие поля — ошибка, а не пустое значение.

type userEnvelope struct {
	User *User `json:"user"`
}

func (e userEnvelope) get() (*User, error) {
	if e.User == nil || e.User.ID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}
	return e.User, nil
}

type blockEnvelope struct {
	Block *Block `json:"block"`
}

func (e blockEnvelope) get() (*Block, error) {
	if e.Block == nil || e.Block.ID == "" {
		return nil, fmt.Errorf("%w: missing block", ErrMalformedResponse)
	}
	return e.Block, nil
}

type blocksEnvelope struct {
	Blocks *[]Block `json:"blocks"`
}

func (e blocksEnvelope) get() ([]Block, error) {
	if e.Blocks == nil {
		return nil, fmt.Errorf("%w: missing blocks", ErrMalformedResponse)
	}
	return *e.Blocks, nil
}

type imageEnvelope struct {
	Image *Image `json:"image"`
}

func (e imageEnvelope) get() (*Image, error) {
	if e.Image == nil || e.Image.ID == "" {
		return nil, fmt.Errorf("%w: missing image", ErrMalformedResponse)
	}
	return e.Image, nil
}

// Package crypto содержит хеширование паролей (PBKDF2-HMAC-SHA256).
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Scheme — метка схемы в закодированном хеше.
	Scheme = "pbkdf2_sha256"
	// DefaultIterations используется, если в конфиге ничего не задано.
	DefaultIterations = 120_000
	// MaxIterations — потолок числа итераций, и для новых хешей, и для проверки сохранённых.
	MaxIterations = 1_000_000

	saltLen   = 16
	keyLen    = 32
	minKeyLen = 16
	maxKeyLen = 64
)

var b64 = base64.RawStdEncoding

// Hasher хеширует и проверяет пароли.
// Формат: pbkdf2_sha256$<iterations>$<base64 salt>$<base64 key>.
type Hasher struct {
	iterations int

	dummyOnce sync.Once
	dummy     string
}

// NewHasher создаёт Hasher. iterations <= 0 означает DefaultIterations,
// значения больше MaxIterations обрезаются.
func NewHasher(iterations int) *Hasher {
	switch {
	case iterations <= 0:
		iterations = DefaultIterations
	case iterations > MaxIterations:
		iterations = MaxIterations
	}
	return &Hasher{iterations: iterations}
}

// Iterations возвращает фактическое число итераций для новых хешей.
func (h *Hasher) Iterations() int { return h.iterations }

// Hash возвращает закодированный хеш пароля со свежей случайной солью.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.iterations, keyLen, sha256.New)
	return encode(h.iterations, salt, key), nil
}

// Verify проверяет пароль против закодированного хеша.
// Любой битый хеш даёт false, ошибки наружу не выходят.
func (h *Hasher) Verify(password, encoded string) bool {
	iterations, salt, key, ok := decode(encoded)
	if !ok {
		return false
	}
	derived := pbkdf2.Key([]byte(password), salt, iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// VerifyDummy прогоняет ту же цену проверки для несуществующего пользователя,
// чтобы по времени ответа нельзя было отличить "нет такого email" от "неверный пароль".
func (h *Hasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		salt := make([]byte, saltLen)
		_, _ = rand.Read(salt)
		key := pbkdf2.Key([]byte("dummy-password"), salt, h.iterations, keyLen, sha256.New)
		h.dummy = encode(h.iterations, salt, key)
	})
	_ = h.Verify(password, h.dummy)
}

func encode(iterations int, salt, key []byte) string {
	return strings.Join([]string{
		Scheme,
		strconv.Itoa(iterations),
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	}, "$")
}

func decode(encoded string) (int, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != Scheme {
		return 0, nil, nil, false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 || iterations > MaxIterations {
		return 0, nil, nil, false
	}
	salt, err := b64.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}
	key, err := b64.DecodeString(parts[3])
	if err != nil || len(key) < minKeyLen || len(key) > maxKeyLen {
		return 0, nil, nil, false
	}
	return iterations, salt, key, true
}

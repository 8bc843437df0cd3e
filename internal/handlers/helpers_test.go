package handlers_test

import (
	"Inbox/internal/blob"
	"Inbox/internal/config"
	"Inbox/internal/crypto"
	"Inbox/internal/handlers"
	"Inbox/internal/kv"
	"Inbox/internal/repo"
	"Inbox/internal/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testInvite = "VALID"

type testEnv struct {
	h   *handlers.Handler
	db  *gorm.DB
	mem *kv.Memory
	cfg *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	web := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(web, "index.html"), []byte("<html>inbox</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(web, "app.js"), []byte("console.log(1)"), 0o644))
	return &config.Config{
		WebDir:        web,
		InviteCode:    testInvite,
		RequireInvite: true,
		SessionTTL:    time.Hour,
		CookieSecure:  true,
		KVBackend:     config.KVBackendMemory,
		ImageBackend:  config.ImageBackendKV,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	mem := kv.NewMemory()
	sessions := service.NewSessionStore(mem, cfg.SessionTTL)
	svc := handlers.Services{
		Users: service.NewUserService(repo.NewUserRepository(db), sessions, crypto.NewHasher(1000),
			service.InviteConfig{Required: cfg.RequireInvite, Code: cfg.InviteCode}),
		Blocks: service.NewBlockService(repo.NewBlockRepository(db)),
		Images: service.NewImageService(repo.NewImageRepository(db), blob.NewKVStore(mem), logger),
	}
	return &testEnv{h: handlers.NewHandler(svc, logger, cfg), db: db, mem: mem, cfg: cfg}
}

// do выполняет JSON-запрос; body == nil — без тела
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.h.Router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	return nil
}

// signup регистрирует пользователя и возвращает cookie сессии
func (e *testEnv) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": "secret123", "inviteCode": testInvite}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	c := sessionCookie(rr)
	require.NotNil(t, c)
	return c
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type blockDTO struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Position  int64      `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type blockResp struct {
	Block blockDTO `json:"block"`
}

type blocksResp struct {
	Blocks []blockDTO `json:"blocks"`
}

type errResp struct {
	Error string `json:"error"`
}

func (e *testEnv) createBlock(t *testing.T, c *http.Cookie, content string) blockDTO {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/blocks", map[string]string{"content": content}, c)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[blockResp](t, rr).Block
}

func (e *testEnv) listIDs(t *testing.T, c *http.Cookie) []string {
	t.Helper()
	rr := e.do(t, http.MethodGet, "/api/blocks", nil, c)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []string
	for _, b := range decode[blocksResp](t, rr).Blocks {
		out = append(out, b.ID)
	}
	return out
}

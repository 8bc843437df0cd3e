package commands

import (
	"Inbox/internal/blob"
	"Inbox/internal/cli/api"
	"Inbox/internal/cli/repo/fs"
	"Inbox/internal/config"
	"Inbox/internal/crypto"
	"Inbox/internal/handlers"
	"Inbox/internal/kv"
	"Inbox/internal/repo"
	"Inbox/internal/service"
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEmail    = "ann@example.com"
	testPassword = "secret123"
	testInvite   = "VALID"
)

type cliEnv struct {
	cfg *config.Config
	out *bytes.Buffer
}

// newCLIEnv поднимает настоящий сервер на in-memory SQLite и перенаправляет вывод CLI в буфер.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	mem := kv.NewMemory()
	logger := zap.NewNop().Sugar()
	srvCfg := &config.Config{WebDir: t.TempDir(), InviteCode: testInvite, RequireInvite: true, SessionTTL: time.Hour}
	h := handlers.NewHandler(handlers.Services{
		Users: service.NewUserService(repo.NewUserRepository(db), service.NewSessionStore(mem, srvCfg.SessionTTL),
			crypto.NewHasher(1000), service.InviteConfig{Required: true, Code: testInvite}),
		Blocks: service.NewBlockService(repo.NewBlockRepository(db)),
		Images: service.NewImageService(repo.NewImageRepository(db), blob.NewKVStore(mem), logger),
	}, logger, srvCfg)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	prevOut, prevIn, prevPrompt, prevNoColor := Out, In, readPassword, color.NoColor
	Out = out
	In = strings.NewReader("")
	color.NoColor = true
	t.Cleanup(func() {
		Out, In, readPassword, color.NoColor = prevOut, prevIn, prevPrompt, prevNoColor
	})

	return &cliEnv{
		cfg: &config.Config{
			ServerURL:    ts.URL,
			TokenFile:    filepath.Join(t.TempDir(), "Inbox", "auth.json"),
			SaveDebounce: 20 * time.Millisecond,
		},
		out: out,
	}
}

// run выполняет команду и возвращает код выхода и вывод именно этой команды.
func (e *cliEnv) run(args ...string) (int, string) {
	e.out.Reset()
	code := Dispatch(context.Background(), e.cfg, args)
	return code, e.out.String()
}

func (e *cliEnv) signup(t *testing.T) {
	t.Helper()
	code, out := e.run("register", "--name", "Ann", "--invite", testInvite, testEmail, testPassword)
	require.Equal(t, 0, code, out)
}

// apiClient возвращает клиента с токеном, который сохранил CLI.
func (e *cliEnv) apiClient(t *testing.T) *api.Client {
	t.Helper()
	creds, err := fs.NewTokenStore(e.cfg.TokenFile).Load()
	require.NoError(t, err)
	return api.New(e.cfg.ServerURL, api.WithToken(creds.Token))
}

func (e *cliEnv) stdin(s string) {
	In = io.Reader(strings.NewReader(s))
}

func answerPasswords(answers ...string) {
	readPassword = func(string) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
}

package repo

import (
	"Inbox/internal/model"
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует отдельную in-memory SQLite (modernc.org/sqlite) для каждого теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func TestDialector_PicksDriverByDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":     "postgres",
		"postgresql://u:p@localhost/db":   "postgres",
		"host=localhost user=u dbname=db": "postgres",
		"":                                "sqlite",
		"file:test.db":                    "sqlite",
		"file::memory:?cache=shared":      "sqlite",
	}
	for dsn, want := range cases {
		if got := dialector(dsn).Name(); got != want {
			t.Fatalf("dialector(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{Logger: newGormLogger(&buf), TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	// неизвестный email при входе — не повод для записи в лог
	_, err = NewUserRepository(db).GetUserByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	// настоящая ошибка по-прежнему пишется
	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}

func TestInitDB_DuplicateEmailIsDuplicatedKey(t *testing.T) {
	db, err := InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	r := NewUserRepository(db)
	ctx := context.Background()

	_, err = r.CreateUser(ctx, &model.User{ID: "u1", Email: "dup@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = r.CreateUser(ctx, &model.User{ID: "u2", Email: "dup@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

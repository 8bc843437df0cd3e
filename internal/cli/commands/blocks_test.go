package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.signup(t)
	ctx := context.Background()

	code, out := env.run("list")
	require.Equal(t, 0, code, out)
	assert.Equal(t, "Нет блоков\n", out)

	code, out = env.run("add", "hello", "world")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "at 1")
	code, out = env.run("add", "second")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "at 2")

	blocks, err := env.apiClient(t).ListBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	first, second := blocks[0], blocks[1]
	assert.Equal(t, "hello world", first.Content)

	code, out = env.run("list")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "Всего: 2")

	code, out = env.run("reorder", second.ID+"=1", first.ID+"=2")
	require.Equal(t, 0, code, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], second.ID)
	assert.Contains(t, lines[1], first.ID)

	code, out = env.run("edit", first.ID, "hello", "again")
	require.Equal(t, 0, code, out)
	code, out = env.run("show", first.ID)
	require.Equal(t, 0, code, out)
	assert.Equal(t, "hello again\n", out)

	code, out = env.run("rm", first.ID, second.ID)
	require.Equal(t, 0, code, out)
	assert.Equal(t, 2, strings.Count(out, "deleted"))

	code, out = env.run("show", first.ID)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "404")
}

func TestReorder_BadArgs(t *testing.T) {
	env := newCLIEnv(t)

	for _, args := range [][]string{{"reorder"}, {"reorder", "abc"}, {"reorder", "=3"}} {
		code, out := env.run(args...)
		assert.Equal(t, 2, code, out)
	}
	code, out := env.run("reorder", "abc=x")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `bad position "x"`)
}

func TestParseOrder(t *testing.T) {
	order, err := parseOrder([]string{"a=1", "b=-3", "c=10"})
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "b", order[1].ID)
	assert.Equal(t, int64(-3), order[1].Position)

	_, err = parseOrder([]string{"a=1.5"})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	assert.Equal(t, "first …", preview("first\nsecond"))

	long := strings.Repeat("я", 100)
	p := preview(long)
	assert.Equal(t, previewWidth, len([]rune(p)))
	assert.True(t, strings.HasSuffix(p, "…"))
}

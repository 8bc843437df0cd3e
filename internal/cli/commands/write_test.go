package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_NewBlockFromStdin(t *testing.T) {
	env := newCLIEnv(t)
	env.signup(t)

	env.stdin("first\nsecond\nthird\n")
	code, out := env.run("write")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "done")

	blocks, err := env.apiClient(t).ListBlocks(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "first\nsecond\nthird", blocks[0].Content)
	assert.Contains(t, out, blocks[0].ID)
	assert.NotContains(t, out, "local-")
}

func TestWrite_AppendsToExistingBlock(t *testing.T) {
	env := newCLIEnv(t)
	env.signup(t)
	b, err := env.apiClient(t).CreateBlock(context.Background(), "start")
	require.NoError(t, err)

	env.stdin("more\nand more")
	code, out := env.run("write", b.ID)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "saved "+b.ID)

	got, err := env.apiClient(t).GetBlock(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "start\nmore\nand more", got.Content)
}

func TestWrite_UnknownBlockAndEmptyInput(t *testing.T) {
	env := newCLIEnv(t)
	env.signup(t)

	code, out := env.run("write", "no-such-block")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not found")

	env.stdin("")
	code, out = env.run("write")
	assert.Equal(t, 0, code, out)
	blocks, err := env.apiClient(t).ListBlocks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestWrite_CancelledBeforeLoad(t *testing.T) {
	env := newCLIEnv(t)
	env.signup(t)
	b, err := env.apiClient(t).CreateBlock(context.Background(), "draft")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env.out.Reset()
	code := Dispatch(ctx, env.cfg, []string{"write", b.ID})
	// ListBlocks уже не пройдёт с отменённым контекстом
	assert.Equal(t, 1, code, env.out.String())

	got, err := env.apiClient(t).GetBlock(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Content)
}

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch_HelpAndUnknown(t *testing.T) {
	env := newCLIEnv(t)

	code, out := env.run()
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Usage:\n  inbox ")
	assert.Contains(t, out, "Environment: BASE_URL")

	code, out = env.run("help")
	assert.Equal(t, 0, code)
	for _, name := range []string{"register", "login", "logout", "me", "passwd", "list", "show", "add", "edit", "rm", "reorder", "upload", "write"} {
		assert.Contains(t, out, name)
	}

	code, out = env.run("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Commands:")

	code, out = env.run("help", "login")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Usage: login [email] [password]\n", out)

	code, out = env.run("help", "nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Unknown command: nope")

	code, out = env.run("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Unknown command: frobnicate")
}

func TestDispatch_UsageAndNotLoggedIn(t *testing.T) {
	env := newCLIEnv(t)

	code, out := env.run("add")
	assert.Equal(t, 2, code)
	assert.Equal(t, "Usage: add <text...>\n", out)

	code, out = env.run("list")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not logged in")
	assert.Contains(t, out, "Run `inbox login` first")
}

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// в тестах — мало итераций, чтобы не тормозить
const testIterations = 1000

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(testIterations)
	for _, pw := range []string{"secret123", "", "пароль", strings.Repeat("x", 500)} {
		enc, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, enc), "password %q must verify", pw)
		assert.False(t, h.Verify(pw+"!", enc))
	}
}

func TestHasher_DifferentSaltsPerCall(t *testing.T) {
	h := NewHasher(testIterations)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHasher_Format(t *testing.T) {
	h := NewHasher(testIterations)
	enc, err := h.Hash("p")
	require.NoError(t, err)
	parts := strings.Split(enc, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, Scheme, parts[0])
	assert.Equal(t, "1000", parts[1])
}

// Старые хеши с другим числом итераций продолжают проверяться.
func TestHasher_VerifiesOtherIterationCounts(t *testing.T) {
	old := NewHasher(500)
	enc, err := old.Hash("legacy")
	require.NoError(t, err)

	current := NewHasher(testIterations)
	assert.True(t, current.Verify("legacy", enc))
}

func TestNewHasher_Clamp(t *testing.T) {
	assert.Equal(t, DefaultIterations, NewHasher(0).Iterations())
	assert.Equal(t, DefaultIterations, NewHasher(-5).Iterations())
	assert.Equal(t, MaxIterations, NewHasher(MaxIterations*10).Iterations())
	assert.Equal(t, 42, NewHasher(42).Iterations())
}

func TestHasher_MalformedHashesNeverVerify(t *testing.T) {
	h := NewHasher(testIterations)
	good, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-hash",
		"wrong scheme":   "bcrypt$" + strings.Join(parts[1:], "$"),
		"too few parts":  strings.Join(parts[:3], "$"),
		"bad iterations": parts[0] + "$abc$" + parts[2] + "$" + parts[3],
		"zero iter":      parts[0] + "$0$" + parts[2] + "$" + parts[3],
		"huge iter":      parts[0] + "$999999999$" + parts[2] + "$" + parts[3],
		"bad salt":       parts[0] + "$" + parts[1] + "$!!!$" + parts[3],
		"bad key":        parts[0] + "$" + parts[1] + "$" + parts[2] + "$!!!",
		"short key":      parts[0] + "$" + parts[1] + "$" + parts[2] + "$AAAA",
	}
	for name, enc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Verify("pw", enc))
		})
	}
}

func TestHasher_VerifyDummyDoesNotPanic(t *testing.T) {
	h := NewHasher(testIterations)
	h.VerifyDummy("anything")
	h.VerifyDummy("again")
}

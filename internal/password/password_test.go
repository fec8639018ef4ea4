package password_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-directory/internal/password"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, err := password.Hash("correct1horse")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$")

	ok, err := password.Verify("correct1horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = password.Verify("wrong1horse", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("correct1horse")
	require.NoError(t, err)
	second, err := password.Hash("correct1horse")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3$short",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$ZGlnZXN0",
	} {
		_, err := password.Verify("correct1horse", hash)
		require.Error(t, err, "hash %q", hash)
	}
}

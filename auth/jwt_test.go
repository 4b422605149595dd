package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulsechat/common"
	"pulsechat/models"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	m := NewManager("super-secret", time.Hour)

	tok, err := m.Generate(123, models.RoleUser)
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, int64(123), claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", -1*time.Second)

	tok, err := m.Generate(1, models.RoleUser)
	require.NoError(t, err)

	_, err = m.Parse(tok)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewManager("right-secret", time.Hour).Generate(2, models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("wrong-secret", time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	_, err := NewManager("secret", time.Hour).Parse("not-a-token")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

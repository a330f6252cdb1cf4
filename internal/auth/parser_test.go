package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-rental/internal/model"
)

func TestParser(t *testing.T) {
	parser := NewParser("test-secret")
	principal := model.Principal{UserID: uuid.New(), Email: "ops@fleet.test", Role: model.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		token, err := parser.Issue(principal, time.Hour)
		require.NoError(t, err)

		got, err := parser.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, principal, got)
		assert.True(t, got.IsAdmin())
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := parser.Issue(principal, -time.Minute)
		require.NoError(t, err)

		_, err = parser.Parse(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, err := NewParser("other").Issue(principal, time.Hour)
		require.NoError(t, err)

		_, err = parser.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		claims := Claims{
			Role: "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.NewString(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = parser.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := parser.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	// Given
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	// When
	token, expiresAt, err := m.Generate(userID)
	require.NoError(t, err)

	// Then
	got, err := m.UserID(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	require.WithinDuration(t, expiresAt, exp, time.Second)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	// Given
	token, _, err := NewJWTManager("one", time.Hour).Generate(uuid.New())
	require.NoError(t, err)

	// When
	_, err = NewJWTManager("two", time.Hour).Verify(token)

	// Then
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	// Given
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := m.Generate(uuid.New())
	require.NoError(t, err)

	// When
	_, err = m.Verify(token)

	// Then
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsNonUUIDSubject(t *testing.T) {
	// Given
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	// When
	_, err = NewJWTManager("secret", time.Hour).UserID(token)

	// Then
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", wantErr: true},
		{name: "basic scheme", header: "Basic abc", wantErr: true},
		{name: "empty token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := ExtractTokenFromHeader(r)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryBlacklist(t *testing.T) {
	// Given
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	// When
	require.NoError(t, b.Add(ctx, "tok", time.Minute))
	require.NoError(t, b.Add(ctx, "expired", 0))

	// Then
	ok, err := b.Contains(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Contains(ctx, "expired")
	require.NoError(t, err)
	require.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = b.Contains(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Given
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", "secret")

	// When
	cfg, err := LoadConfig()

	// Then
	req := require.New(t)
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal(24*time.Hour, cfg.TokenTTL)
	req.Equal(256, cfg.WSSendBuffer)
	req.EqualValues(65536, cfg.WSMaxFrameBytes)
	req.False(cfg.WSEnforceRoomMembership)
	req.True(cfg.SeedDefaultGroup)
	req.Equal(":8080", cfg.Addr())
	req.Equal([]string{"http://localhost:3000"}, cfg.Origins())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	// Given
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", "")

	// When
	_, err := LoadConfig()

	// Then
	require.Error(t, err)
}

func TestValidate_SanitizesNonPositiveValues(t *testing.T) {
	// Given
	cfg := Config{
		DatabaseURL:     "sqlite::memory:",
		JWTSecret:       "secret",
		Port:            -1,
		WSSendBuffer:    0,
		WSMaxFrameBytes: -5,
		WSFrameRate:     0,
		WSFrameBurst:    -1,
	}

	// When
	err := cfg.Validate()

	// Then
	req := require.New(t)
	req.NoError(err)
	req.Equal(defaultPort, cfg.Port)
	req.Equal(defaultShutdownTimeout, cfg.ShutdownTimeout)

	opts := cfg.HubOptions()
	req.Equal(256, opts.SendBuffer)
	req.EqualValues(64*1024, opts.MaxFrameBytes)
	req.Equal(5.0, opts.FrameRate)
	req.Equal(10, opts.FrameBurst)
}

func TestParseOrigins(t *testing.T) {
	got := ParseOrigins(" http://a.test/ , ,https://b.test,*")
	require.Equal(t, []string{"http://a.test", "https://b.test", "*"}, got)
}

func TestIsProduction(t *testing.T) {
	require.True(t, Config{AppEnv: "production"}.IsProduction())
	require.True(t, Config{AppEnv: "PROD"}.IsProduction())
	require.False(t, Config{AppEnv: "development"}.IsProduction())
}

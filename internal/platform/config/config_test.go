package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PGSQL_URL", "")
	t.Setenv("JOURNAL_APPLICATION_CODES", "")
	t.Setenv("BACKEND_TIMEOUT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "2110", cfg.PayableAccountCode)
	assert.Equal(t, "6200", cfg.DefaultExpenseAccountCode)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_TIMEOUT", "750ms")
	t.Setenv("BATCH_CHUNK_SIZE", "50")
	t.Setenv("JOURNAL_APPLICATION_CODES", " EXP, PUR ,,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.BackendTimeout)
	assert.Equal(t, 50, cfg.BatchChunkSize)
	assert.Equal(t, []string{"EXP", "PUR"}, cfg.JournalApplicationCodes)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoadConfig_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
}

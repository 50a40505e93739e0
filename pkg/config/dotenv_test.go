package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	logger, logs := observedLogger()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("embed_deployment_name=from-dotenv\n"), 0o644))
	t.Setenv("embed_deployment_name", "")
	require.NoError(t, os.Unsetenv("embed_deployment_name"))

	assert.True(t, LoadEnvFile(logger, path))
	assert.Equal(t, "from-dotenv", os.Getenv("embed_deployment_name"))
	assert.Equal(t, 1, logs.FilterMessage("environment variables are loaded: true").Len())
}

func TestLoadEnvFile_KeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("gpt_deployment_name=from-dotenv\n"), 0o644))
	t.Setenv("gpt_deployment_name", "from-process")

	assert.True(t, LoadEnvFile(nil, path))
	assert.Equal(t, "from-process", os.Getenv("gpt_deployment_name"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	logger, logs := observedLogger()

	assert.False(t, LoadEnvFile(logger, filepath.Join(t.TempDir(), ".env")))
	assert.Equal(t, 1, logs.FilterMessage("environment variables are loaded: false").Len())
}

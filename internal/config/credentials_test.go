package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("USAJOBS_API_KEY", " key-from-env \n")
	t.Setenv("USAJOBS_EMAIL", "jobs@example.com")

	creds, err := LoadCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", creds.APIKey)
	assert.Equal(t, "jobs@example.com", creds.Email)
}

func TestLoadCredentialsKeyFileTakesPrecedence(t *testing.T) {
	t.Setenv("USAJOBS_API_KEY", "key-from-env")
	t.Setenv("USAJOBS_EMAIL", "jobs@example.com")

	keyFile := filepath.Join(t.TempDir(), "usajobs.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("key-from-file\n"), 0o600))

	creds, err := LoadCredentials("", keyFile)
	require.NoError(t, err)
	assert.Equal(t, "key-from-file", creds.APIKey)
}

func TestLoadCredentialsFromDotEnv(t *testing.T) {
	t.Setenv("USAJOBS_API_KEY", "")
	t.Setenv("USAJOBS_EMAIL", "")
	require.NoError(t, os.Unsetenv("USAJOBS_API_KEY"))
	require.NoError(t, os.Unsetenv("USAJOBS_EMAIL"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("USAJOBS_API_KEY=dotenv-key\nUSAJOBS_EMAIL=dotenv@example.com\n"), 0o600))

	creds, err := LoadCredentials(envFile, "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", creds.APIKey)
	assert.Equal(t, "dotenv@example.com", creds.Email)
}

func TestLoadCredentialsMissingValues(t *testing.T) {
	t.Setenv("USAJOBS_API_KEY", "")
	t.Setenv("USAJOBS_EMAIL", "jobs@example.com")

	_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.env"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USAJOBS API key is not configured")

	t.Setenv("USAJOBS_API_KEY", "key")
	t.Setenv("USAJOBS_EMAIL", "")

	_, err = LoadCredentials("", "")
	require.EqualError(t, err, "USAJOBS_EMAIL is not configured")
}

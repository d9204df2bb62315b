package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/spigell/fedjobs/internal/secrets"
)

const credentialsPrefix = "usajobs"

// Credentials authenticate requests to the USAJOBS API.
type Credentials struct {
	APIKey string `envconfig:"API_KEY"`
	Email  string `envconfig:"EMAIL"`
}

// LoadCredentials reads USAJOBS_API_KEY and USAJOBS_EMAIL from the
// environment after loading envFile, if it exists. A key file takes
// precedence over the environment.
func LoadCredentials(envFile, keyFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var creds Credentials
	if err := envconfig.Process(credentialsPrefix, &creds); err != nil {
		return Credentials{}, fmt.Errorf("reading credentials from environment: %w", err)
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "USAJOBS API key",
		Value: creds.APIKey,
		File:  keyFile,
	})
	if err != nil {
		return Credentials{}, err
	}
	creds.APIKey = key

	if creds.Email == "" {
		return Credentials{}, errors.New("USAJOBS_EMAIL is not configured")
	}

	return creds, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

type Environment string

const (
	LOCAL Environment = "local"
	PROD  Environment = "prod"
)

type CredentialBackend string

const (
	BACKEND_FILE   CredentialBackend = "file"
	BACKEND_SSM    CredentialBackend = "ssm"
	BACKEND_DYNAMO CredentialBackend = "dynamo"
)

const DefaultBaseURL = "http://localhost:5004/api"

type Config struct {
	BaseURL           string            `validate:"required,url"`
	Env               Environment       `validate:"oneof=local prod"`
	CredentialBackend CredentialBackend `validate:"oneof=file ssm dynamo"`
	// CredentialPath is empty for the default location under the user's
	// config directory.
	CredentialPath        string
	SSMParameter          string `validate:"required_if=CredentialBackend ssm"`
	DynamoTable           string `validate:"required_if=CredentialBackend dynamo"`
	Profile               string `validate:"required"`
	ShareOrigin           string `validate:"omitempty,url"`
	SheetsCredentialsFile string
	SpreadsheetID         string
}

// Load reads configuration from the environment, after applying a .env file
// in the working directory if there is one.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		BaseURL:               getEnvOrDefault("REGCTL_API_URL", DefaultBaseURL),
		Env:                   Environment(getEnvOrDefault("REGCTL_ENV", string(LOCAL))),
		CredentialBackend:     CredentialBackend(getEnvOrDefault("REGCTL_CREDENTIAL_BACKEND", string(BACKEND_FILE))),
		CredentialPath:        getEnvOrDefault("REGCTL_CREDENTIAL_PATH", ""),
		SSMParameter:          getEnvOrDefault("REGCTL_SSM_PARAMETER", ""),
		DynamoTable:           getEnvOrDefault("REGCTL_DYNAMO_TABLE", ""),
		Profile:               getEnvOrDefault("REGCTL_PROFILE", "default"),
		ShareOrigin:           getEnvOrDefault("REGCTL_SHARE_ORIGIN", ""),
		SheetsCredentialsFile: getEnvOrDefault("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		SpreadsheetID:         getEnvOrDefault("REGCTL_SPREADSHEET_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validation.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %s", strings.Join(validation.Fields(err), ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APIOrigin is the scheme and host of BaseURL, where uploaded files are
// served from.
func (c Config) APIOrigin() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.TrimRight(c.BaseURL, "/"), "/api")
	}
	return u.Scheme + "://" + u.Host
}

// SharingOrigin is where share links point. It falls back to the API origin.
func (c Config) SharingOrigin() string {
	if c.ShareOrigin != "" {
		return strings.TrimRight(c.ShareOrigin, "/")
	}
	return c.APIOrigin()
}

func (c Config) CanExportToSheets() bool {
	return c.SpreadsheetID != ""
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}

// Package config loads the runtime configuration from the environment, with
// an optional .env file for local development and an optional YAML file for
// deployments that prefer file-based configuration. Environment variables
// always win over the YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCredentialsFile = "service_account.json"
	DefaultPort            = 8080

	// BackendDrive uploads images to a shared Google Drive folder.
	BackendDrive = "drive"

	// BackendStorage uploads images to a Google Cloud Storage bucket.
	BackendStorage = "storage"
)

type Config struct {
	SpreadsheetID      string `yaml:"spreadsheet-id"`
	ChannelAccessToken string `yaml:"line-channel-access-token"`
	ChannelSecret      string `yaml:"line-channel-secret"`
	CredentialsFile    string `yaml:"google-credentials-file"`
	CredentialsJSON    string `yaml:"-"`
	UploadBackend      string `yaml:"upload-backend"`
	DriveFolderID      string `yaml:"drive-folder-id"`
	StorageBucket      string `yaml:"storage-bucket"`
	Port               int    `yaml:"port"`
	LogLevel           string `yaml:"log-level"`
}

// Load builds the configuration from (in increasing precedence) defaults,
// the YAML file at path (if any), a .env file in the working directory (if
// any) and the process environment.
func Load(path string) (Config, error) {
	// .env is a local development convenience - a missing file is not an error
	godotenv.Load()

	cfg := Config{
		CredentialsFile: DefaultCredentialsFile,
		UploadBackend:   BackendDrive,
		Port:            DefaultPort,
		LogLevel:        "INFO",
	}

	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("unable to read configuration file %s (%w)", path, err)
		}

		if err := yaml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("unable to parse configuration file %s (%w)", path, err)
		}
	}

	overlay(&cfg.SpreadsheetID, "SPREADSHEET_ID")
	overlay(&cfg.ChannelAccessToken, "LINE_CHANNEL_ACCESS_TOKEN")
	overlay(&cfg.ChannelSecret, "LINE_CHANNEL_SECRET")
	overlay(&cfg.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	overlay(&cfg.CredentialsJSON, "GOOGLE_CREDENTIALS_JSON")
	overlay(&cfg.UploadBackend, "UPLOAD_BACKEND")
	overlay(&cfg.DriveFolderID, "DRIVE_FOLDER_ID")
	overlay(&cfg.StorageBucket, "STORAGE_BUCKET_NAME")
	overlay(&cfg.LogLevel, "LOG_LEVEL")

	// Cloud Run sets PORT
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT value '%s' (%v)", v, err)
		}

		cfg.Port = port
	}

	return cfg, nil
}

// Validate returns the names of the required settings that are missing. The
// backend-specific identifiers are checked at the owning component's
// construction instead, so that the unused backend does not fail the startup
// of the other.
func (c Config) Validate() []string {
	missing := []string{}

	if c.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}

	if c.ChannelAccessToken == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
	}

	if c.ChannelSecret == "" {
		missing = append(missing, "LINE_CHANNEL_SECRET")
	}

	return missing
}

func overlay(v *string, key string) {
	if value := os.Getenv(key); value != "" {
		*v = value
	}
}

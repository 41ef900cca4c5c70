// Package creds turns a Google service account credential - either an inline
// JSON blob (Cloud Run) or a file on disk (local development) - into an
// authorised HTTP client.
package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/khchen/lifelogger/config"
)

const (
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDrive        = "https://www.googleapis.com/auth/drive"
	ScopeDriveFile    = "https://www.googleapis.com/auth/drive.file"
	ScopeStorage      = "https://www.googleapis.com/auth/devstorage.read_write"
)

// ServiceAccount is the subset of the credential JSON surfaced by the
// 'check' command.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// Client builds an authorised HTTP client for the requested scopes,
// preferring the inline GOOGLE_CREDENTIALS_JSON blob over the credential
// file.
func Client(ctx context.Context, cfg config.Config, scopes ...string) (*http.Client, error) {
	blob, err := read(cfg)
	if err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(blob, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials (%v)", err)
	}

	return jwt.Client(ctx), nil
}

// Describe parses the credential blob for diagnostics.
func Describe(cfg config.Config) (ServiceAccount, error) {
	blob, err := read(cfg)
	if err != nil {
		return ServiceAccount{}, err
	}

	var account ServiceAccount
	if err := json.Unmarshal(blob, &account); err != nil {
		return ServiceAccount{}, fmt.Errorf("invalid service account credentials (%v)", err)
	}

	return account, nil
}

func read(cfg config.Config) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}

	blob, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s (%w)", cfg.CredentialsFile, err)
	}

	return blob, nil
}

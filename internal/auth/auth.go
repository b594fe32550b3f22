// Package auth discovers the Google service-account credentials used by the
// Sheets ledger.
//
// Search order:
//  1. Inline JSON (config key or GOOGLE_SERVICE_ACCOUNT_JSON)
//  2. An explicit credentials file
//  3. The first *.json in the credentials directory, preferring a file whose
//     name mentions "Sheet"
//  4. GOOGLE_APPLICATION_CREDENTIALS, when application default credentials are allowed
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

const (
	// EnvServiceAccountJSON holds inline service-account JSON.
	EnvServiceAccountJSON = "GOOGLE_SERVICE_ACCOUNT_JSON"
	// EnvApplicationCredentials is Google's standard credentials file variable.
	EnvApplicationCredentials = "GOOGLE_APPLICATION_CREDENTIALS"

	// TypeServiceAccount represents service account credentials.
	TypeServiceAccount = "service_account"
	// TypeAuthorizedUser represents user credentials from gcloud auth.
	TypeAuthorizedUser = "authorized_user"

	service = "sheets"
)

// Scopes are the OAuth scopes the ledger needs: spreadsheet edits and Drive
// lookup by title.
var Scopes = []string{sheetsapi.SpreadsheetsScope, drive.DriveScope}

// Method names where credentials came from.
type Method string

const (
	MethodJSON Method = "service_account_json"
	MethodFile Method = "service_account_file"
	MethodADC  Method = "application_default"
)

// Config controls discovery.
type Config struct {
	JSON     string // inline service-account JSON
	File     string // explicit credentials file
	Dir      string // directory searched for *.json
	AllowADC bool
}

// DefaultConfig returns a config reading the environment and the default directory.
func DefaultConfig() Config {
	return Config{
		JSON: os.Getenv(EnvServiceAccountJSON),
		Dir:  constants.DefaultCredentialsDir,
	}
}

// File is the subset of a credentials JSON file that is inspected locally.
type File struct {
	Type           string `json:"type"`
	ProjectID      string `json:"project_id"`
	ClientEmail    string `json:"client_email"`
	PrivateKeyID   string `json:"private_key_id"`
	UniverseDomain string `json:"universe_domain"`
}

// Source is a located credential.
type Source struct {
	Method Method
	Path   string
	JSON   []byte
	File   *File
}

// Describe returns a short human-readable description.
func (s *Source) Describe() string {
	who := ""
	if s.File != nil && s.File.ClientEmail != "" {
		who = " as " + s.File.ClientEmail
	}
	if s.Path != "" {
		return fmt.Sprintf("%s (%s)%s", s.Method, s.Path, who)
	}
	return string(s.Method) + who
}

// Discover locates credentials without contacting Google.
func Discover(cfg Config) (*Source, error) {
	if js := strings.TrimSpace(cfg.JSON); js != "" {
		f, err := Parse([]byte(js))
		if err != nil {
			return nil, errors.NewAuthenticationError(service, string(MethodJSON), "invalid inline credentials", err)
		}
		return &Source{Method: MethodJSON, JSON: []byte(js), File: f}, nil
	}

	if cfg.File != "" {
		return load(MethodFile, cfg.File)
	}

	if cfg.Dir != "" {
		path, err := FindFile(cfg.Dir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			return load(MethodFile, path)
		}
	}

	if cfg.AllowADC {
		if path := os.Getenv(EnvApplicationCredentials); path != "" {
			return load(MethodADC, path)
		}
	}

	return nil, errors.NewAuthenticationError(service, string(MethodFile),
		fmt.Sprintf("no credentials found: add a service-account JSON to %q or set %s", cfg.Dir, EnvServiceAccountJSON),
		errors.ErrNotFound)
}

// FindFile returns the credentials file in dir, or "" when there is none.
// A missing directory is not an error.
func FindFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", errors.WrapIO("glob", dir, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	for _, m := range matches {
		if strings.Contains(filepath.Base(m), "Sheet") {
			return m, nil
		}
	}
	return matches[0], nil
}

// Parse validates credentials JSON.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	switch f.Type {
	case "":
		return nil, fmt.Errorf("missing 'type' field")
	case TypeServiceAccount:
		if f.ClientEmail == "" {
			return nil, fmt.Errorf("service account is missing 'client_email'")
		}
	case TypeAuthorizedUser:
	default:
		return nil, fmt.Errorf("unknown type: %s", f.Type)
	}
	return &f, nil
}

func load(method Method, path string) (*Source, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- credentials path is user configured
	if err != nil {
		return nil, errors.NewAuthenticationError(service, string(method), "cannot read "+path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.NewAuthenticationError(service, string(method), path, err)
	}
	return &Source{Method: method, Path: path, JSON: data, File: f}, nil
}

// ClientOptions turns a source into API client options scoped for the ledger.
func ClientOptions(ctx context.Context, src *Source) ([]option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, src.JSON, Scopes...)
	if err != nil {
		return nil, errors.NewAuthenticationError(service, string(src.Method), "cannot build credentials", err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

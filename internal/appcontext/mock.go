package appcontext

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/images"
	"github.com/agentstation/ordermatch/pkg/ledger"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding field.
// If a field is nil, the method returns a default/zero value.
type Mock struct {
	CatalogFunc  func(context.Context) (*catalogs.Catalog, error)
	LedgerFunc   func(context.Context) (ledger.Ledger, error)
	ImagesFunc   func() (images.Fetcher, error)
	SettingsFunc func() Settings
	LoggerFunc   func() *zerolog.Logger
	Format       string
	VersionFunc  func() string
}

// Catalog returns a catalog using the mock function or an empty catalog.
func (m *Mock) Catalog(ctx context.Context) (*catalogs.Catalog, error) {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(ctx)
	}
	return catalogs.New(), nil
}

// Ledger returns a ledger using the mock function or nil.
func (m *Mock) Ledger(ctx context.Context) (ledger.Ledger, error) {
	if m.LedgerFunc != nil {
		return m.LedgerFunc(ctx)
	}
	return nil, nil
}

// Images returns a fetcher using the mock function or a default fetcher.
func (m *Mock) Images() (images.Fetcher, error) {
	if m.ImagesFunc != nil {
		return m.ImagesFunc()
	}
	return images.New()
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{
		Threshold:     constants.DefaultThreshold,
		TopN:          constants.DefaultTopN,
		CommitTimeout: time.Second,
		SoldOutMarker: constants.SoldOutMarker,
	}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// Package app provides the application context and dependency management
// for the ordermatch CLI. It centralizes configuration, logging and the
// lazily opened catalog, ledger and image fetcher.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/auth"
	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/catalogs/workbook"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/images"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/sheets"
	"github.com/agentstation/ordermatch/pkg/ledger/xlsx"
)

// App represents the ordermatch application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu      sync.Mutex
	catalog *catalogs.Catalog
	ledger  ledger.Ledger
	images  images.Fetcher
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Settings returns the matching and commit parameters.
func (a *App) Settings() appcontext.Settings {
	return appcontext.Settings{
		Threshold:     a.config.Threshold,
		TopN:          a.config.TopN,
		CommitTimeout: a.config.CommitTimeout,
		SoldOutMarker: a.config.SoldOutMarker,
	}
}

// Catalog loads the catalog workbook once per session.
func (a *App) Catalog(ctx context.Context) (*catalogs.Catalog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}
	if a.config.CatalogFile == "" {
		return nil, &errors.ValidationError{
			Field:   "catalog_file",
			Message: "no catalog workbook configured (use --catalog or CATALOG_FILE)",
		}
	}

	cat, err := workbook.Load(ctx, a.config.CatalogFile,
		workbook.WithExclude(a.config.ExcludeTabs...),
		workbook.WithImageStripping(a.config.StripImages),
		workbook.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.WrapResource("load", "catalog", a.config.CatalogFile, err)
	}
	a.catalog = cat
	return cat, nil
}

// Ledger opens the configured ledger backend once per session.
func (a *App) Ledger(ctx context.Context) (ledger.Ledger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ledger != nil {
		return a.ledger, nil
	}

	var (
		l   ledger.Ledger
		err error
	)
	switch a.config.Ledger {
	case LedgerXLSX:
		l, err = a.openWorkbookLedger()
	default:
		l, err = a.openSheetsLedger(ctx)
	}
	if err != nil {
		return nil, err
	}
	a.ledger = l
	return l, nil
}

func (a *App) openWorkbookLedger() (ledger.Ledger, error) {
	if a.config.LedgerFile == "" {
		return nil, &errors.ValidationError{
			Field:   "ledger_file",
			Message: "the xlsx ledger needs a workbook path (use --ledger-file or LEDGER_FILE)",
		}
	}
	l, err := xlsx.Open(a.config.LedgerFile, xlsx.WithSheet(a.config.Worksheet))
	if err != nil {
		return nil, errors.WrapResource("open", "ledger", a.config.LedgerFile, err)
	}
	a.logger.Debug().Str("ledger", l.URL()).Msg("Opened workbook ledger")
	return l, nil
}

func (a *App) openSheetsLedger(ctx context.Context) (ledger.Ledger, error) {
	src, err := auth.Discover(auth.Config{
		JSON:     a.config.ServiceAccountJSON,
		File:     a.config.CredentialsFile,
		Dir:      a.config.CredentialsDir,
		AllowADC: true,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("credentials", src.Describe()).Msg("Using Google credentials")

	opts, err := auth.ClientOptions(ctx, src)
	if err != nil {
		return nil, err
	}
	l, err := sheets.Open(ctx, sheets.Config{
		SpreadsheetID: a.config.SpreadsheetID,
		Title:         a.config.SpreadsheetTitle,
		Worksheet:     a.config.Worksheet,
	}, opts...)
	if err != nil {
		return nil, errors.WrapResource("open", "ledger", a.config.SpreadsheetTitle, err)
	}
	a.logger.Debug().Str("ledger", l.URL()).Msg("Opened spreadsheet ledger")
	return l, nil
}

// Images returns the thumbnail fetcher.
func (a *App) Images() (images.Fetcher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.images != nil {
		return a.images, nil
	}
	f, err := images.New(
		images.WithCacheTTL(a.config.ImageCacheTTL),
		images.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	a.images = f
	return f, nil
}

// Shutdown releases the ledger when it holds a file.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.ledger.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.WrapIO("close", "ledger", err)
		}
	}
	a.ledger = nil
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithCatalog sets a preloaded catalog (useful for testing).
func WithCatalog(cat *catalogs.Catalog) Option {
	return func(a *App) error {
		a.catalog = cat
		return nil
	}
}

// WithLedger sets a ledger backend (useful for testing).
func WithLedger(l ledger.Ledger) Option {
	return func(a *App) error {
		a.ledger = l
		return nil
	}
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

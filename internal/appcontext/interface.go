// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App so they can be tested against a Mock.
package appcontext

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/images"
	"github.com/agentstation/ordermatch/pkg/ledger"
)

// Settings are the matching and commit parameters shared by commands.
type Settings struct {
	Threshold     float64
	TopN          int
	CommitTimeout time.Duration
	SoldOutMarker string
}

// Interface defines the application context that commands need.
type Interface interface {
	// Catalog returns the product catalog, loading it on first use.
	Catalog(ctx context.Context) (*catalogs.Catalog, error)

	// Ledger returns the configured ledger backend, opening it on first use.
	Ledger(ctx context.Context) (ledger.Ledger, error)

	// Images returns the thumbnail fetcher.
	Images() (images.Fetcher, error)

	// Settings returns the matching and commit parameters.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

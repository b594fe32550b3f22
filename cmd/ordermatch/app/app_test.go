package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
	"github.com/agentstation/ordermatch/pkg/logging"
)

func testConfig() *Config {
	return &Config{
		Ledger:        LedgerXLSX,
		Threshold:     70,
		TopN:          5,
		CommitTimeout: time.Second,
		SoldOutMarker: "품절",
		LogFormat:     "json",
		LogOutput:     "stderr",
	}
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}

	s := app.Settings()
	if s.Threshold != 70 || s.TopN != 5 || s.CommitTimeout != time.Second || s.SoldOutMarker != "품절" {
		t.Errorf("Settings() = %+v", s)
	}
}

// TestApp_Catalog verifies catalog loading errors and injection.
func TestApp_Catalog(t *testing.T) {
	ctx := context.Background()

	app, err := New("dev", "", "", "", WithConfig(testConfig()), WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.Catalog(ctx); !errors.IsValidationError(err) {
		t.Errorf("Catalog() without a file = %v, want ValidationError", err)
	}

	cat := catalogs.New(catalogs.NewTable("가전", []string{"상품명"}, [][]string{{"쿨 냉장고"}}))
	app, err = New("dev", "", "", "", WithConfig(testConfig()), WithCatalog(cat))
	if err != nil {
		t.Fatal(err)
	}
	got, err := app.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() failed: %v", err)
	}
	if got != cat {
		t.Error("Catalog() should return the injected catalog")
	}
}

// TestApp_Ledger verifies ledger selection and the singleton behavior.
func TestApp_Ledger(t *testing.T) {
	ctx := context.Background()

	app, err := New("dev", "", "", "", WithConfig(testConfig()), WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.Ledger(ctx); !errors.IsValidationError(err) {
		t.Errorf("Ledger() without a workbook = %v, want ValidationError", err)
	}

	l := memory.New([]string{"상품명"})
	app, err = New("dev", "", "", "", WithConfig(testConfig()), WithLedger(l))
	if err != nil {
		t.Fatal(err)
	}
	got1, err := app.Ledger(ctx)
	if err != nil {
		t.Fatalf("Ledger() failed: %v", err)
	}
	got2, _ := app.Ledger(ctx)
	if got1 != got2 {
		t.Error("Ledger() should return the same instance")
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestApp_Images verifies the fetcher is created once.
func TestApp_Images(t *testing.T) {
	app, err := New("dev", "", "", "", WithConfig(testConfig()))
	if err != nil {
		t.Fatal(err)
	}
	f1, err := app.Images()
	if err != nil {
		t.Fatalf("Images() failed: %v", err)
	}
	f2, _ := app.Images()
	if f1 != f2 {
		t.Error("Images() should return the same instance")
	}
}

// TestApp_Execute verifies flag validation in the root command.
func TestApp_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version", args: []string{"version", "-o", "json"}},
		{name: "unknown ledger backend", args: []string{"pending", "--ledger", "csv"}, wantErr: true},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: true},
		{name: "unknown output format", args: []string{"version", "-o", "xml"}, wantErr: true},
	}

	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := New("dev", "", "", "", WithConfig(testConfig()), WithLogger(logging.NewNopLogger()))
			if err != nil {
				t.Fatal(err)
			}
			err = app.Execute(ctx, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// TestApp_SetupCommandLogger verifies commands run with the configured logger in context.
func TestApp_SetupCommandLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	app, err := New("dev", "", "", "", WithConfig(testConfig()))
	if err != nil {
		t.Fatal(err)
	}
	root := app.createRootCommand()

	var got *zerolog.Logger
	root.AddCommand(&cobra.Command{
		Use: "capture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			got = logging.FromContext(cmd.Context())
			return nil
		},
	})
	root.SetArgs([]string{"capture"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got != app.Logger() {
		t.Errorf("context logger = %p, want app logger %p", got, app.Logger())
	}
}

// TestApp_ApplyFlags verifies explicitly set flags override the config.
func TestApp_ApplyFlags(t *testing.T) {
	app, err := New("dev", "", "", "", WithConfig(testConfig()))
	if err != nil {
		t.Fatal(err)
	}
	root := app.createRootCommand()
	if err := root.PersistentFlags().Parse([]string{"--ledger", "SHEETS", "--worksheet", "주문"}); err != nil {
		t.Fatal(err)
	}
	app.applyFlags(root.PersistentFlags())

	if app.config.Ledger != LedgerSheets {
		t.Errorf("Ledger = %q, want %q", app.config.Ledger, LedgerSheets)
	}
	if app.config.Worksheet != "주문" {
		t.Errorf("Worksheet = %q", app.config.Worksheet)
	}
	if app.config.CatalogFile != "" {
		t.Errorf("unset flags must not override: CatalogFile = %q", app.config.CatalogFile)
	}
}

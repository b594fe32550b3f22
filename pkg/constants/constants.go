// Package constants provides shared constants used throughout the ordermatch codebase.
// This includes timeouts, matching defaults, ledger naming and file permissions
// that should be consistent across the application.
package constants

import "time"

// Timeout constants
const (
	// DefaultCommitTimeout bounds a single reconciliation commit against a remote ledger
	DefaultCommitTimeout = 30 * time.Second

	// ImageFetchTimeout is the per-request timeout when downloading product images
	ImageFetchTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like service-account keys (rw-------)
	SecureFilePermissions = 0600
)

// Matching defaults
const (
	// DefaultThreshold is the minimum similarity score for suggestions
	DefaultThreshold = 70.0

	// DefaultTopN is the maximum number of suggestions returned per order
	DefaultTopN = 5

	// BestMatchThreshold is the minimum similarity score for a single best match
	BestMatchThreshold = 80.0

	// FuzzyColumnThreshold is the minimum header similarity for fuzzy column resolution
	FuzzyColumnThreshold = 95.0
)

// Ledger naming
const (
	// DefaultSpreadsheetTitle is the title used to locate the ledger spreadsheet
	DefaultSpreadsheetTitle = "상품매칭용시트"

	// DefaultWorksheet is the worksheet holding order lines
	DefaultWorksheet = "시트1"

	// OrderNameColumn is the ledger header carrying the free-text order name
	OrderNameColumn = "상품명"

	// SoldOutMarker flags a catalog table whose products are out of stock
	SoldOutMarker = "품절"

	// FirstDataRow is the 1-based row of the first order line, under the header row
	FirstDataRow = 2
)

// Catalog defaults
const (
	// MonthEndStockTab is the summary tab excluded from catalog loading by default
	MonthEndStockTab = "월말재고현황"
)

// Image constants
const (
	// ThumbnailSize is the edge length of the square thumbnail bounding box
	ThumbnailSize = 100

	// ThumbnailQuality is the JPEG quality used when encoding thumbnails
	ThumbnailQuality = 85

	// ImageCacheTTL is how long fetched thumbnails stay cached
	ImageCacheTTL = 30 * time.Minute

	// ImageCacheCleanupInterval is how often to clean expired cache entries
	ImageCacheCleanupInterval = 10 * time.Minute

	// MaxImageBytes caps the size of a downloaded image
	MaxImageBytes = 20 << 20
)

// Path constants
const (
	// DefaultCredentialsDir is searched for service-account key files
	DefaultCredentialsDir = "config"

	// DefaultConfigName is the config file name looked up in the home directory
	DefaultConfigName = ".ordermatch"
)

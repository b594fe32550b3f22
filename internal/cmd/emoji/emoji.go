// Package emoji provides symbol constants for CLI status lines.
package emoji

const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks a non-fatal problem.
	Warning = "!"

	// Info marks an informational line.
	Info = "i"
)

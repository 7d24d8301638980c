package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Execution completed successfully
	SymbolFail     = "✗" // Execution failed
	SymbolPending  = "○" // Not yet started
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done
	SymbolSkipped  = "⊘" // Skipped or cancelled
)

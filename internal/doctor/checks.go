// Package doctor runs pre-flight diagnostics over the config and the
// selected hosts. Findings are advisory: they never abort a run and never
// affect exit status.
package doctor

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "SSH").
	Category() string

	// Run executes the check and returns its results. A single check may
	// produce several findings (one per typo pair, for example).
	Run() []CheckResult
}

// RunAll executes all checks in order and flattens the results.
func RunAll(checks []Check) []CheckResult {
	var results []CheckResult
	for _, check := range checks {
		results = append(results, check.Run()...)
	}
	return results
}

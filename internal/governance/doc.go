// Package governance enforces the per-request timeout budgets for upstream
// calls. The budget is the proxy's entire fault-tolerance policy: a single
// attempt, bounded by cancellation, with no retries.
package governance

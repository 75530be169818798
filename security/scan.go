package security

import "bytes"

// Scanner inspects raw input bytes for known-risky patterns.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Scope: a best-effort heuristic pre-filter. False negatives for payloads
//   hidden in binary structure are expected; a pass is not a guarantee.
type Scanner interface {
	// Scan returns the name of the first matched rule, or "" for a pass.
	Scan(data []byte) string
}

// ScanRule names one risky byte pattern.
type ScanRule struct {
	Name    string
	Pattern []byte
}

// DefaultScanRules are the built-in risky patterns: embedded script tags,
// dynamic-code-execution markers, and shell-invocation tokens.
func DefaultScanRules() []ScanRule {
	return []ScanRule{
		{Name: "script-tag", Pattern: []byte("<script")},
		{Name: "javascript-uri", Pattern: []byte("javascript:")},
		{Name: "eval-call", Pattern: []byte("eval(")},
		{Name: "exec-call", Pattern: []byte("exec(")},
		{Name: "system-call", Pattern: []byte("system(")},
		{Name: "shell-exec", Pattern: []byte("shell_exec(")},
	}
}

// PatternScanner matches a fixed set of byte patterns via substring search.
type PatternScanner struct {
	rules []ScanRule
}

// NewPatternScanner creates a scanner with the given rules. With no rules,
// DefaultScanRules are used.
func NewPatternScanner(rules ...ScanRule) *PatternScanner {
	if len(rules) == 0 {
		rules = DefaultScanRules()
	}
	return &PatternScanner{rules: rules}
}

// Scan returns the name of the first rule whose pattern occurs in data.
func (s *PatternScanner) Scan(data []byte) string {
	for _, rule := range s.rules {
		if bytes.Contains(data, rule.Pattern) {
			return rule.Name
		}
	}
	return ""
}

// Ensure PatternScanner implements Scanner
var _ Scanner = (*PatternScanner)(nil)

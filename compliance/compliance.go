// Package compliance selects how strictly packages are admitted.
package compliance

import "fmt"

// ComplianceMode selects how aggressively ambiguity in a package is rejected.
//
// Permissive collapses byte-identical duplicate elements and ignores
// elements unreachable from the storage index. Strict rejects both.
// Conflicting duplicates and schema mismatches are rejected in every mode.
type ComplianceMode int

const (
	Permissive ComplianceMode = iota
	Strict
)

func (m ComplianceMode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("ComplianceMode(%d)", int(m))
	}
}

// Parse maps a mode name to a ComplianceMode. The empty string is Permissive.
func Parse(s string) (ComplianceMode, error) {
	switch s {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("compliance: invalid mode %q", s)
	}
}

// Package capabilities represents the protocol capabilities of a backend
// server as a closed set of version-selected behaviors.
package capabilities

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// APIVersion is the protocol version reported by the backend. All quirk
// handling in the completion pipeline is gated on comparisons against the
// thresholds below rather than on ad hoc feature probing.
type APIVersion struct {
	version *semver.Version
	display string
}

// Known thresholds. Each one marks the release where a protocol behavior
// appeared or stopped being broken.
var (
	// V290 is the floor for trusting '@' and '<' as general trigger
	// characters; below it they only fire in narrow text contexts.
	V290 = MustParse("2.9.0")

	// V300 is the floor for the structured completion response body; older
	// servers return a bare entry array.
	V300 = MustParse("3.0.0")

	// V310 opens the window in which forwarding '@' breaks completions.
	V310 = MustParse("3.1.0")

	// V320 closes the '@' window, is the floor for forwarding '#', and the
	// ceiling for the commit-character validity workaround.
	V320 = MustParse("3.2.0")

	// V430 is the floor for native space-triggered completion.
	V430 = MustParse("4.3.0")
)

// Parse parses a backend-reported version string such as "4.3.5".
func Parse(s string) (*APIVersion, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid backend version %q: %w", s, err)
	}
	return &APIVersion{version: v, display: s}, nil
}

// MustParse parses a version string and panics on failure. Only for
// package-level threshold constants and tests.
func MustParse(s string) *APIVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// GTE reports whether a is at or above other.
func (a *APIVersion) GTE(other *APIVersion) bool {
	return !a.version.LessThan(other.version)
}

// LT reports whether a is strictly below other.
func (a *APIVersion) LT(other *APIVersion) bool {
	return a.version.LessThan(other.version)
}

// String returns the version as reported by the backend.
func (a *APIVersion) String() string {
	return a.display
}

// SupportsStructuredCompletions reports whether the backend returns the
// structured completion body instead of a bare entry array.
func (a *APIVersion) SupportsStructuredCompletions() bool {
	return a.GTE(V300)
}

// SupportsSpaceTrigger reports whether the backend natively understands a
// space trigger character.
func (a *APIVersion) SupportsSpaceTrigger() bool {
	return a.GTE(V430)
}

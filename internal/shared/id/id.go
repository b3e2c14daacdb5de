// Package id provides centralized ID generation for the controller.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: ids sort by creation time
//   - Prefixed types: Type-specific prefixes for debugging (term_*, grp_*)
//   - Type safety: Separate types prevent ID misuse
//
// Terminal ids are generated once and never reused within a process
// lifetime; they survive restarts through the persisted workspace
// snapshot. Human-facing ordinals are a separate, reusable namespace
// handled by OrdinalPool.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// TermID identifies a terminal session
type TermID string

// GroupID identifies a split group
type GroupID string

// ============================================================================
// ID Prefixes (for debugging and type identification)
// ============================================================================

const (
	TermPrefix  = "term"
	GroupPrefix = "grp"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	// Default generator with cryptographically secure entropy
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewTermID generates a new terminal session ID
func (g *Generator) NewTermID() TermID {
	return TermID(g.GenerateWithPrefix(TermPrefix))
}

// NewGroupID generates a new group ID
func (g *Generator) NewGroupID() GroupID {
	return GroupID(g.GenerateWithPrefix(GroupPrefix))
}

// NewTermID generates a terminal session ID from the default generator
func NewTermID() TermID {
	return Default().NewTermID()
}

// NewGroupID generates a group ID from the default generator
func NewGroupID() GroupID {
	return Default().NewGroupID()
}

// ============================================================================
// Type Conversion and Validation
// ============================================================================

// String methods for ID types
func (id TermID) String() string  { return string(id) }
func (id GroupID) String() string { return string(id) }

// IsValid checks if an ID string is a prefixed ULID
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a prefixed ID string into its ULID payload
func Parse(id string) (ulid.ULID, error) {
	_, raw, found := strings.Cut(id, "_")
	if !found {
		raw = id
	}
	return ulid.Parse(raw)
}

// Timestamp extracts the creation time from an ID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// Package idgen produces prefixed record identifiers of the form {prefix}-{epochMillis}-{suffix}.
package idgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// suffixSpace is 36^9, the number of distinct nine character base36 suffixes
const suffixSpace = 101559956668416

// Generator creates identifiers from a clock and a random source
type Generator struct {
	now     func() time.Time
	entropy func() uint64
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the clock used for the millisecond component
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithEntropy overrides the random source used for the suffix
func WithEntropy(entropy func() uint64) Option {
	return func(g *Generator) {
		g.entropy = entropy
	}
}

// New creates a Generator backed by the system clock and random UUIDs
func New(opts ...Option) *Generator {
	g := &Generator{
		now:     time.Now,
		entropy: uuidEntropy,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New returns a fresh identifier for the given prefix
func (g *Generator) New(prefix string) string {
	return prefix + "-" + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + Suffix(g.entropy())
}

// Suffix renders a random value as at most nine base36 characters, keeping its low-order digits
func Suffix(v uint64) string {
	return strconv.FormatUint(v%suffixSpace, 36)
}

// uuidEntropy draws 64 uniform bits from a version 4 UUID. Byte 6 carries the version
// nibble and byte 8 the variant bits; shifting the second half left by two drops the
// variant and lands random bits over the version nibble.
func uuidEntropy() uint64 {
	id := uuid.New()
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	return hi ^ (lo << 2)
}

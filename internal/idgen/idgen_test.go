package idgen

import (
	"math/bits"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_New_Format(t *testing.T) {
	fixed := time.UnixMilli(1718000000123)
	g := New(WithClock(func() time.Time { return fixed }))

	id := g.New("LD")

	assert.Regexp(t, regexp.MustCompile(`^LD-1718000000123-[0-9a-z]{1,9}$`), id)
}

func TestGenerator_New_DeterministicWithInjectedEntropy(t *testing.T) {
	fixed := time.UnixMilli(1000)
	g := New(
		WithClock(func() time.Time { return fixed }),
		WithEntropy(func() uint64 { return 35 }),
	)

	assert.Equal(t, "PRJ-1000-z", g.New("PRJ"))
}

func TestGenerator_New_UniqueWithinSameMillisecond(t *testing.T) {
	fixed := time.UnixMilli(42)
	g := New(WithClock(func() time.Time { return fixed }))

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.New("QUO")
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  string
	}{
		{"zero", 0, "0"},
		{"single digit", 10, "a"},
		{"nine digits wrap", suffixSpace, "0"},
		{"low-order digits kept", suffixSpace + 35, "z"},
		{"max uint64", ^uint64(0), "11264sgsf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suffix(tt.value))
		})
	}
}

func TestUUIDEntropy_TopBitsAreRandom(t *testing.T) {
	const draws = 2000
	var top, second int
	for i := 0; i < draws; i++ {
		v := uuidEntropy()
		top += int(v >> 63)
		second += int(v>>62) & 1
	}

	// a raw UUID variant field would pin these to 1 and 0
	assert.InDelta(t, draws/2, top, draws/5)
	assert.InDelta(t, draws/2, second, draws/5)
}

func TestUUIDEntropy_BitBalance(t *testing.T) {
	const draws = 500
	total := 0
	for i := 0; i < draws; i++ {
		total += bits.OnesCount64(uuidEntropy())
	}

	assert.InDelta(t, 32.0, float64(total)/draws, 1.0)
}

func TestGenerator_New_LeadingSuffixCharacterSpread(t *testing.T) {
	g := New(WithClock(func() time.Time { return time.UnixMilli(42) }))

	leading := make(map[byte]int)
	for i := 0; i < 3000; i++ {
		id := g.New("LD")
		suffix := id[len("LD-42-"):]
		leading[suffix[0]]++
	}

	assert.Greater(t, len(leading), 30)
	for ch, n := range leading {
		assert.Less(t, n, 300, "leading character %q over-represented", ch)
	}
}

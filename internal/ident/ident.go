// Package ident allocates the short identifiers the page builder uses for
// elements and global classes.
package ident

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Alphabet is the character set of generated identifiers.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength matches the id length of the builder's own exports.
const DefaultLength = 6

// Mode selects how identifiers are produced.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeHash   Mode = "hash"
)

// ParseMode validates a configured mode; empty selects random.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeRandom:
		return ModeRandom, nil
	case ModeHash:
		return ModeHash, nil
	default:
		return "", fmt.Errorf("unknown id mode %q (expected random or hash)", value)
	}
}

// Generator produces a candidate identifier. Seed is the text the id is
// derived from in deterministic mode and is ignored otherwise.
type Generator interface {
	Generate(seed string) string
}

// Random draws identifiers uniformly from Alphabet.
type Random struct {
	Length int
	rng    *rand.Rand
}

// NewRandom returns a generator backed by the runtime's random source.
func NewRandom() *Random {
	return &Random{Length: DefaultLength}
}

// NewSeededRandom returns a reproducible generator, mainly for tests.
func NewSeededRandom(seed uint64) *Random {
	return &Random{Length: DefaultLength, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate implements Generator.
func (r *Random) Generate(string) string {
	n := r.Length
	if n <= 0 {
		n = DefaultLength
	}
	buf := make([]byte, n)
	for i := range buf {
		var idx int
		if r.rng != nil {
			idx = r.rng.IntN(len(Alphabet))
		} else {
			idx = rand.IntN(len(Alphabet))
		}
		buf[i] = Alphabet[idx]
	}
	return string(buf)
}

// Hash derives identifiers from their seed with a 32-bit rolling hash, so the
// same class name always maps to the same id.
type Hash struct{}

// Generate implements Generator.
func (Hash) Generate(seed string) string {
	return HashID(seed)
}

// HashID computes h = h*31 + c over the UTF-16 units of s with 32-bit
// wrap-around, then renders |h| in base 36 truncated to DefaultLength.
func HashID(s string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	id := strconv.FormatInt(abs, 36)
	if len(id) > DefaultLength {
		id = id[:DefaultLength]
	}
	return id
}

// New returns the generator for mode.
func New(mode Mode) Generator {
	if mode == ModeHash {
		return Hash{}
	}
	return NewRandom()
}

// ErrExhausted is returned when no free identifier could be found.
var ErrExhausted = errors.New("identifier space exhausted")

const maxAttempts = 64

// Allocator hands out identifiers that are unique within one run. It is not
// safe for concurrent use.
type Allocator struct {
	gen  Generator
	used map[string]struct{}
}

// NewAllocator creates an allocator that will never return any of reserved.
func NewAllocator(gen Generator, reserved ...string) *Allocator {
	a := &Allocator{gen: gen, used: make(map[string]struct{}, len(reserved))}
	a.Reserve(reserved...)
	return a
}

// Reserve marks ids as taken.
func (a *Allocator) Reserve(ids ...string) {
	for _, id := range ids {
		if id != "" {
			a.used[id] = struct{}{}
		}
	}
}

// InUse reports whether id has been reserved or allocated.
func (a *Allocator) InUse(id string) bool {
	_, ok := a.used[id]
	return ok
}

// Next returns a fresh identifier for seed, regenerating on collision.
func (a *Allocator) Next(seed string) (string, error) {
	candidate := seed
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := a.gen.Generate(candidate)
		if id != "" && !a.InUse(id) {
			a.used[id] = struct{}{}
			return id, nil
		}
		candidate = seed + "#" + strconv.Itoa(attempt+1)
	}
	return "", fmt.Errorf("%w: %d attempts for %q", ErrExhausted, maxAttempts, seed)
}

// Package id generates the identifiers used across the desktop backend.
//
// Everything is a ULID, so ids sort by creation time and log lines for one
// session read in order. Typed wrappers carry a short prefix (ntf_, req_,
// span_, conn_) so an id seen in a log identifies its kind at a glance.
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

// DeliveryID identifies one delivery of a notification
type DeliveryID string

// RequestID identifies an API request or trace
type RequestID string

// SpanID identifies one traced operation
type SpanID string

const (
	DeliveryPrefix = "ntf"
	RequestPrefix  = "req"
	SpanPrefix     = "span"
)

// Generator produces ULIDs from an entropy source and a clock
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand and the wall clock.
// Monotonic entropy keeps ids minted in the same millisecond ordered.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWith creates a generator with a fixed entropy source and clock,
// for deterministic tests
func NewGeneratorWith(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{entropy: entropy, now: now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// Delivery mints a delivery id from g
func (g *Generator) Delivery() DeliveryID {
	return DeliveryID(g.GenerateWithPrefix(DeliveryPrefix))
}

// NewDeliveryID generates a notification delivery id
func NewDeliveryID() DeliveryID {
	return Default().Delivery()
}

// NewRequestID generates a request id
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSpanID generates a span id
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (id DeliveryID) String() string { return string(id) }
func (id RequestID) String() string  { return string(id) }
func (id SpanID) String() string     { return string(id) }

// IsValid reports whether s is a ULID, with or without a prefix
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses a ULID, stripping any prefix
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp extracts the creation time encoded in an id
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

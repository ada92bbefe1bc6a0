// Package idgen produces the unique strings used to keep concurrently created test entities
// from colliding: random uppercase codes, padded names and timestamp suffixes.
package idgen

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ledgerload/ledgerload/internal/common/util"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// TimeStampLayout renders day-month-year hour:minute:second.microsecond.
	TimeStampLayout = "02-Jan-2006 (15:04:05.000000)"
	// DateLayout matches the ledger API's "dd MMMM yyyy" date format.
	DateLayout = "02 January 2006"
)

// Generator is safe for concurrent use.
type Generator struct {
	clock util.Clock
	rand  *rand.Rand

	mu   sync.Mutex
	last time.Time
}

func NewGenerator(clock util.Clock, random *rand.Rand) *Generator {
	return &Generator{clock: clock, rand: random}
}

var defaultGenerator = NewGenerator(&util.DefaultClock{}, util.NewThreadsafeRand(time.Now().UnixNano()))

// Default returns the process-wide generator.
func Default() *Generator {
	return defaultGenerator
}

// RandomString returns n random uppercase letters, or "" when n <= 0.
func (g *Generator) RandomString(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(letters[g.rand.Intn(len(letters))])
	}
	return sb.String()
}

// PadWithRandomString appends random uppercase letters to prefix until it is length long.
// A prefix already at or beyond length is returned unchanged.
func (g *Generator) PadWithRandomString(prefix string, length int) string {
	return prefix + g.RandomString(length-len(prefix))
}

// TimeStamp returns the current local time rendered with TimeStampLayout. Successive calls never
// return the same value: if the clock has not moved past the previous stamp by at least a
// microsecond, the previous stamp plus one microsecond is used.
func (g *Generator) TimeStamp() string {
	now := g.clock.Now().Local().Truncate(time.Microsecond)

	g.mu.Lock()
	if !now.After(g.last) {
		now = g.last.Add(time.Microsecond)
	}
	g.last = now
	g.mu.Unlock()

	return now.Format(TimeStampLayout)
}

// DateStringNow returns today's date in DateLayout.
func (g *Generator) DateStringNow() string {
	return DateString(g.clock.Now())
}

func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

func RandomString(n int) string {
	return defaultGenerator.RandomString(n)
}

func PadWithRandomString(prefix string, length int) string {
	return defaultGenerator.PadWithRandomString(prefix, length)
}

func TimeStamp() string {
	return defaultGenerator.TimeStamp()
}

func DateStringNow() string {
	return defaultGenerator.DateStringNow()
}

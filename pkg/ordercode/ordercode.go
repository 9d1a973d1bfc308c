// Package ordercode generates the short human-shareable codes customers
// quote to support ("захиалгын код"). Codes are at most 8 characters,
// derived from a high-resolution timestamp plus a random suffix. Collisions
// are possible; callers insert under a unique index and regenerate on a
// duplicate-key error.
package ordercode

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// MaxLen is the maximum code length.
const MaxLen = 8

const suffixAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ" // no I, L, O, U

// New returns a fresh order code.
func New() string {
	return At(time.Now())
}

// At returns the code for a given instant; split out for tests.
func At(t time.Time) string {
	// Microsecond timestamp in base 36, most-varying digits last.
	ts := strings.ToUpper(strconv.FormatInt(t.UnixMicro(), 36))
	if len(ts) > MaxLen-2 {
		ts = ts[len(ts)-(MaxLen-2):]
	}
	return ts + suffix(2)
}

func suffix(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable enough that a fixed
			// character beats aborting an order.
			b.WriteByte('0')
			continue
		}
		b.WriteByte(suffixAlphabet[idx.Int64()])
	}
	return b.String()
}

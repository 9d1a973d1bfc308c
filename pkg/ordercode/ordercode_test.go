package ordercode_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ganzorig/mishil/pkg/ordercode"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestCodeLength(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := ordercode.New()
		if len(code) == 0 || len(code) > ordercode.MaxLen {
			t.Fatalf("code %q length %d, want 1..%d", code, len(code), ordercode.MaxLen)
		}
	}
}

func TestCodeCharset(t *testing.T) {
	code := ordercode.New()
	for _, ch := range code {
		if !strings.ContainsRune(alphabet, ch) {
			t.Fatalf("code %q contains unexpected character %q", code, ch)
		}
	}
}

func TestCodesDifferAcrossTime(t *testing.T) {
	a := ordercode.At(time.Unix(1700000000, 0))
	b := ordercode.At(time.Unix(1700000001, 0))
	// Timestamp prefixes (all but the 2 random chars) must differ.
	if a[:len(a)-2] == b[:len(b)-2] {
		t.Fatalf("codes for different seconds share a prefix: %q vs %q", a, b)
	}
}

func TestCodeIsUpperCase(t *testing.T) {
	code := ordercode.New()
	if code != strings.ToUpper(code) {
		t.Fatalf("code %q is not upper case", code)
	}
}

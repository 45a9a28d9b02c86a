package envutil

import (
	"testing"
	"time"
)

func TestTypedLookups(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "forty")
	t.Setenv("ENVUTIL_BOOL", "yes")
	t.Setenv("ENVUTIL_SECS", "30")
	t.Setenv("ENVUTIL_DUR", "250ms")
	t.Setenv("ENVUTIL_FLOAT", "0.5")
	t.Setenv("ENVUTIL_LIST", " a, ,b ")
	t.Setenv("ENVUTIL_BLANK", "   ")

	if got := Int("ENVUTIL_INT", 1, nil); got != 42 {
		t.Fatalf("int: want=42 got=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("invalid int should fall back: got=%d", got)
	}
	if !Bool("ENVUTIL_BOOL", false, nil) {
		t.Fatalf("bool: want=true")
	}
	if got := Duration("ENVUTIL_SECS", time.Second, nil); got != 30*time.Second {
		t.Fatalf("bare seconds: got=%s", got)
	}
	if got := Duration("ENVUTIL_DUR", time.Second, nil); got != 250*time.Millisecond {
		t.Fatalf("duration: got=%s", got)
	}
	if got := Float("ENVUTIL_FLOAT", 0.1, nil); got != 0.5 {
		t.Fatalf("float: got=%v", got)
	}
	if got := Strings("ENVUTIL_LIST", nil, nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("strings: got=%v", got)
	}
	if got := String("ENVUTIL_BLANK", "def", nil); got != "def" {
		t.Fatalf("blank should use default: got=%q", got)
	}
}

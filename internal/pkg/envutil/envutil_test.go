package envutil

import (
	"testing"
	"time"
)

func TestStringTrimsAndDefaults(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "  hello  ")
	if got := String("ENVUTIL_TEST_STR", "x"); got != "hello" {
		t.Fatalf("String = %q, want hello", got)
	}
	if got := String("ENVUTIL_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("String default = %q, want fallback", got)
	}
}

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("Int = %d, want 42", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "not-a-number")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int garbage = %d, want default 7", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "true")
	if !Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatal("Bool true not parsed")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatal("unparseable value must return default")
	}
}

func TestSecondsRejectsNegative(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_SECS", "90")
	if got := Seconds("ENVUTIL_TEST_SECS", time.Second); got != 90*time.Second {
		t.Fatalf("Seconds = %v, want 90s", got)
	}
	t.Setenv("ENVUTIL_TEST_SECS", "-5")
	if got := Seconds("ENVUTIL_TEST_SECS", time.Second); got != time.Second {
		t.Fatalf("negative seconds = %v, want default", got)
	}
}

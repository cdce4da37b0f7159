package utils

import (
	"testing"
	"time"
)

func TestSafeEnv(t *testing.T) {
	const key = "_JORNADA_TEST_SAFEENV"
	t.Setenv(key, "")
	if got := SafeEnv(key, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv(key, "value")
	if got := SafeEnv(key, "fallback"); got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}
}

func TestEnvTyped(t *testing.T) {
	t.Setenv("_JORNADA_INT", "42")
	t.Setenv("_JORNADA_BAD_INT", "x")
	t.Setenv("_JORNADA_BOOL", "true")
	t.Setenv("_JORNADA_DUR", "250ms")
	if got := EnvInt("_JORNADA_INT", 1); got != 42 {
		t.Fatalf("EnvInt = %d, want 42", got)
	}
	if got := EnvInt("_JORNADA_BAD_INT", 7); got != 7 {
		t.Fatalf("EnvInt malformed = %d, want 7", got)
	}
	if !EnvBool("_JORNADA_BOOL", false) {
		t.Fatalf("EnvBool want true")
	}
	if got := EnvDuration("_JORNADA_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("EnvDuration = %v", got)
	}
	if got := EnvDuration("_JORNADA_MISSING_DUR", time.Second); got != time.Second {
		t.Fatalf("EnvDuration fallback = %v", got)
	}
}

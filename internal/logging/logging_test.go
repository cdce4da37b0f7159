package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, lvl := range []string{"", "debug", "warn"} {
		l, err := New(lvl, true)
		if err != nil {
			t.Fatalf("level %q: %v", lvl, err)
		}
		_ = l.Sync()
	}
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

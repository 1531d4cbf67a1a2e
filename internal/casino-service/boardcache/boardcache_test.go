package boardcache

import "testing"

func TestKeyShape(t *testing.T) {
	got := Key("low", "abc123")
	if got != "board:low:abc123" {
		t.Fatalf("unexpected key: %s", got)
	}
}

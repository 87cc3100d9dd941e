package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestFingerprint(t *testing.T) {
	full := SHA256Hex("some listing notes")

	tests := []struct {
		name      string
		prefixLen int
		want      string
	}{
		{"12 char prefix", 12, full[:12]},
		{"full hash if prefix too long", 100, full},
		{"full hash if prefix not positive", 0, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint("some listing notes", tt.prefixLen)
			if got != tt.want {
				t.Errorf("Fingerprint(%d) = %s, want %s", tt.prefixLen, got, tt.want)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("scores:emulators", "game-1", "")
	b := CacheKey("scores:emulators", "game-1", "")
	if a != b {
		t.Error("CacheKey should be deterministic")
	}
	if !strings.HasPrefix(a, "scores:emulators:") {
		t.Errorf("CacheKey = %s, want namespace prefix", a)
	}

	// Part boundaries must matter: ("ab","") and ("a","b") are different scopes.
	if CacheKey("ns", "ab", "") == CacheKey("ns", "a", "b") {
		t.Error("CacheKey should separate parts")
	}
}

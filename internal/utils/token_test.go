package utils

import (
	"strings"
	"testing"
)

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	if err != nil {
		t.Fatalf("GenerateSecureToken() error = %v", err)
	}

	if len(token) < 60 {
		t.Errorf("token seems too short: %d chars", len(token))
	}

	// URL-safe: tokens travel in links.
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token contains non-URL-safe characters: %q", token)
	}
}

func TestGenerateSecureToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSecureToken()
		if err != nil {
			t.Fatalf("GenerateSecureToken() error = %v", err)
		}
		if seen[token] {
			t.Fatal("GenerateSecureToken() produced a duplicate")
		}
		seen[token] = true
	}
}

package util

import "testing"

func TestIsRedirectSafe(t *testing.T) {
	const base = "https://app.example.com/integrations"

	tests := []struct {
		name     string
		redirect string
		want     bool
	}{
		{"empty", "", true},
		{"relative path", "/settings/integrations", true},
		{"relative with query", "/settings?tab=github", true},
		{"same host absolute", "https://app.example.com/done", true},
		{"other host", "https://evil.example.net/done", false},
		{"protocol relative", "//evil.example.net", false},
		{"backslash trick", "/\\evil.example.net", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"data scheme", "data:text/html,hi", false},
		{"header injection", "/ok\r\nSet-Cookie: x=1", false},
		{"subdomain is not the same host", "https://sub.app.example.com/", false},
		{"scheme downgrade", "http://app.example.com/done", false},
		{"host case insensitive", "https://APP.example.com/done", true},
		{"bare relative segment", "settings", false},
		{"userinfo", "https://app.example.com@evil.example.net/", false},
		{"embedded credentials on same host", "https://user@app.example.com/", false},
		{"tab character", "/ok\tpath", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRedirectSafe(tt.redirect, base); got != tt.want {
				t.Errorf("IsRedirectSafe(%q) = %v, want %v", tt.redirect, got, tt.want)
			}
		})
	}
}

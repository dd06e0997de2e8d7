package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether redirectURL may be used as a post-callback
// destination. Accepted values are empty, a local path ("/settings", not
// "//host"), or an absolute http(s) URL with the same scheme and host as baseURL.
func IsRedirectSafe(redirectURL, baseURL string) bool {
	if redirectURL == "" {
		return true
	}

	// Control characters would let the value split a Location header
	if strings.ContainsFunc(redirectURL, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return false
	}
	// Browsers treat "\" like "/", turning "/\host" into a protocol-relative URL
	if strings.Contains(redirectURL, "\\") {
		return false
	}

	if strings.HasPrefix(redirectURL, "/") {
		return !strings.HasPrefix(redirectURL, "//")
	}

	target, err := url.Parse(redirectURL)
	if err != nil || target.Host == "" || target.User != nil {
		return false
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return false
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return false
	}
	return strings.EqualFold(target.Host, base.Host) && target.Scheme == base.Scheme
}

// Package openurl opens web links in the user's default browser.
package openurl

import (
	"fmt"
	"net/url"
)

// Open validates rawURL and hands it to the platform's browser launcher.
// Only http and https links are opened.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	return openURL(u.String())
}

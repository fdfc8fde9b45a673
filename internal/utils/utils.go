package utils

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// IsJSURL checks if the URL points to a JS file
func IsJSURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.Contains(rawURL, ".js")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".js")
}

// SafeFilename turns a player version or URL fragment into a filename-safe
// token.
func SafeFilename(s string) string {
	s = strings.ReplaceAll(s, "http://", "")
	s = strings.ReplaceAll(s, "https://", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	if s == "" {
		return "bundle"
	}
	return s
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteLines writes a slice of strings to a file
func WriteLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}

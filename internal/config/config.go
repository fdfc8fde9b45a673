package config

import (
	"flag"
	"path/filepath"
)

type Config struct {
	PageURL    string
	PlayerURL  string
	BundleFile string
	Signature  string
	NParam     string
	Timeout    int
	Silent     bool
	ScriptOnly bool
	OutputDir  string
}

func NewConfig() *Config {
	return &Config{
		Timeout:   15,
		OutputDir: "sigcarve_output",
	}
}

func (c *Config) ParseFlags() {
	flag.StringVar(&c.PageURL, "url", "", "Watch page URL (resolves player, fetches bundle, decodes formats)")
	flag.StringVar(&c.PlayerURL, "player", "", "Player bundle URL (skips page resolution)")
	flag.StringVar(&c.BundleFile, "bundle", "", "Local player bundle file (skips all fetching)")
	flag.StringVar(&c.Signature, "sig", "", "Scrambled signature to decipher with the carved script")
	flag.StringVar(&c.NParam, "n", "", "Throttling parameter to transform with the carved script")
	flag.IntVar(&c.Timeout, "timeout", 15, "HTTP timeout in seconds")
	flag.BoolVar(&c.Silent, "silent", false, "Silent mode (no banner)")
	flag.BoolVar(&c.ScriptOnly, "script-only", false, "Stop after extraction, print the script, skip execution")
	flag.StringVar(&c.OutputDir, "o", "sigcarve_output", "Output directory")

	flag.Parse()

	if absPath, err := filepath.Abs(c.OutputDir); err == nil {
		c.OutputDir = absPath
	}
}

// HasInput reports whether any bundle source was given.
func (c *Config) HasInput() bool {
	return c.PageURL != "" || c.PlayerURL != "" || c.BundleFile != ""
}

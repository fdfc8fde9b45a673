package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sigcarve/sigcarve/internal/config"
	"github.com/sigcarve/sigcarve/internal/core"
	"github.com/sigcarve/sigcarve/internal/extract"
	"github.com/sigcarve/sigcarve/internal/fetch"
	"github.com/sigcarve/sigcarve/internal/jsrun"
	"github.com/sigcarve/sigcarve/internal/stream"
	"github.com/sigcarve/sigcarve/internal/ui"
	"github.com/sigcarve/sigcarve/internal/utils"
)

func main() {
	cfg := config.NewConfig()
	cfg.ParseFlags()

	if !cfg.Silent {
		printBanner()
	}

	if !cfg.HasInput() {
		fmt.Println("Error: usage: sigcarve -url https://.../watch?v=... [flags]")
		fmt.Println("       or: sigcarve -player https://.../base.js")
		fmt.Println("       or: sigcarve -bundle ./base.js")
		os.Exit(1)
	}

	state := core.NewPipelineState()
	client := fetch.NewClient(time.Duration(cfg.Timeout) * time.Second)

	if err := utils.EnsureDir(cfg.OutputDir); err != nil {
		ui.Error("Cannot create output directory: %v", err)
		os.Exit(1)
	}

	// ---------------------------------------------------------
	// STAGE 1: BUNDLE ACQUISITION
	// ---------------------------------------------------------
	ui.Stage(1, "Bundle Acquisition")
	bundle, page, err := acquireBundle(cfg, client)
	if err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
	state.Bundle = bundle
	if bundle.Version != "" {
		ui.Info("Player version: %s", bundle.Version)
	}
	ui.Success("Bundle loaded (%d bytes)", len(bundle.Body))

	// ---------------------------------------------------------
	// STAGE 2: EXTRACTION
	// ---------------------------------------------------------
	ui.Stage(2, "Extraction")
	start := time.Now()
	script, err := extract.Extract(bundle.Body)
	if err != nil {
		ui.Error("Extraction failed: %v", err)
		os.Exit(1)
	}
	state.Script = script
	ui.Success("Carved decode script in %v (%d bytes)", time.Since(start).Round(time.Millisecond), len(script.Source))

	scriptPath := filepath.Join(cfg.OutputDir, utils.SafeFilename(bundle.Version)+".decode.js")
	if err := utils.WriteLines(scriptPath, []string{script.Source}); err != nil {
		ui.Warning("Could not save script: %v", err)
	} else {
		ui.Info("Script saved to %s", scriptPath)
	}

	if cfg.ScriptOnly {
		fmt.Println(script.Source)
		return
	}

	// ---------------------------------------------------------
	// STAGE 3: EXECUTION
	// ---------------------------------------------------------
	ui.Stage(3, "Execution")
	runner, err := jsrun.New(script)
	if err != nil {
		ui.Error("Script did not load: %v", err)
		os.Exit(1)
	}

	if cfg.Signature != "" {
		out, err := runner.Decipher(cfg.Signature)
		if err != nil {
			ui.Error("Decipher failed: %v", err)
			os.Exit(1)
		}
		ui.Success("Deciphered signature: %s", out)
	}
	if cfg.NParam != "" {
		out, err := runner.Transform(cfg.NParam)
		if err != nil {
			ui.Error("Transform failed: %v", err)
			os.Exit(1)
		}
		ui.Success("Transformed n parameter: %s", out)
	}

	// ---------------------------------------------------------
	// STAGE 4: FORMAT DECODING (page input only)
	// ---------------------------------------------------------
	if page != "" {
		ui.Stage(4, "Format Decoding")
		pr, err := stream.ParsePage(page)
		if err != nil {
			ui.Warning("No player response in page: %v", err)
			return
		}
		formats, err := stream.DecodeFormats(pr, runner)
		if err != nil {
			ui.Warning("Format decoding failed: %v", err)
			return
		}
		state.Formats = formats
		ui.PrintFormats(formats, 20)

		var lines []string
		for _, f := range formats {
			lines = append(lines, fmt.Sprintf("%d\t%s", f.Itag, f.URL))
		}
		urlsPath := filepath.Join(cfg.OutputDir, "format_urls.txt")
		if err := utils.WriteLines(urlsPath, lines); err == nil {
			ui.Info("Format URLs saved to %s", urlsPath)
		}
	}

	fmt.Println("\n[+] sigcarve finished.")
}

// acquireBundle resolves the bundle from whichever input was given. The
// watch-page body is returned alongside so the format stage can reuse it.
func acquireBundle(cfg *config.Config, client *fetch.Client) (*core.PlayerBundle, string, error) {
	if cfg.BundleFile != "" {
		body, err := os.ReadFile(cfg.BundleFile)
		if err != nil {
			return nil, "", fmt.Errorf("reading bundle file: %w", err)
		}
		return &core.PlayerBundle{LocalPath: cfg.BundleFile, Body: string(body)}, "", nil
	}

	playerURL := cfg.PlayerURL
	page := ""
	if playerURL == "" {
		ui.Info("Resolving player from %s", cfg.PageURL)
		body, err := client.FetchPage(cfg.PageURL)
		if err != nil {
			return nil, "", err
		}
		page = body
		playerURL, err = client.PlayerURLFromPage(page)
		if err != nil {
			return nil, "", err
		}
	}

	if !utils.IsJSURL(playerURL) {
		ui.Warning("Player URL does not look like a script: %s", playerURL)
	}

	bundle, err := client.FetchBundle(playerURL)
	if err != nil {
		return nil, "", err
	}
	return bundle, page, nil
}

func printBanner() {
	ui.Println(ui.Bold+ui.Cyan, `
   _____ ______________________   ___ _    ________
  / ___//  _/ ____/ ____/   |  \ / / | |  / / ____/
  \__ \ / // / __/ /   / /| | | / /| | | / / __/
 ___/ // / /_/ / /___/ ___ | |/ ___ | |/ / /___
/____/___/\____/\____/_/  |_|___/_/  |_|___/_____/`)
	ui.Println(ui.Bold+ui.Yellow, "    SIGCARVE", ui.Reset, "- ", ui.Green, "carve decode functions out of player bundles")
	ui.Println(ui.Gray, "    Version: 1.0.0")
	fmt.Println()
}

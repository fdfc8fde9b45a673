package ui

import (
	"fmt"
	"strings"

	"github.com/sigcarve/sigcarve/internal/core"
)

// PrintFormats prints the decoded formats as a table, at most limit rows.
func PrintFormats(formats []core.Format, limit int) {
	Section("Decoded Formats")

	fmt.Printf("%s\n", strings.Repeat("-", 72))
	fmt.Printf("%-6s | %-10s | %-24s | %s\n", "itag", "quality", "mime", "URL")
	fmt.Printf("%s\n", strings.Repeat("-", 72))

	count := len(formats)
	shown := count
	if shown > limit {
		shown = limit
	}

	for i := 0; i < shown; i++ {
		f := formats[i]
		quality := f.QualityLabel
		if quality == "" {
			quality = f.Quality
		}
		mime := f.MimeType
		if idx := strings.IndexByte(mime, ';'); idx > 0 {
			mime = mime[:idx]
		}
		u := f.URL
		if len(u) > 40 {
			u = u[:37] + "..."
		}
		fmt.Printf("%-6d | %-10s | %-24s | %s%s%s\n", f.Itag, quality, mime, Green, u, Reset)
	}

	if count > shown {
		fmt.Printf(Yellow+"... and %d more formats not shown."+Reset+"\n", count-shown)
	}
	fmt.Printf("%s\n", strings.Repeat("-", 72))
}

// Package stream decodes the playable formats of a watch page: it parses the
// embedded player response, unscrambles cipher-protected URLs, and rewrites
// the throttling parameter.
package stream

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sigcarve/sigcarve/internal/core"
	"github.com/sigcarve/sigcarve/internal/jsrun"
)

const responseMarker = "ytInitialPlayerResponse"

type rawFormat struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	SignatureCipher string `json:"signatureCipher"`
	Cipher          string `json:"cipher"`
	MimeType        string `json:"mimeType"`
	Bitrate         int    `json:"bitrate"`
	FPS             int    `json:"fps"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Quality         string `json:"quality"`
	QualityLabel    string `json:"qualityLabel"`
	AudioQuality    string `json:"audioQuality"`
}

type PlayerResponse struct {
	StreamingData struct {
		Formats         []rawFormat `json:"formats"`
		AdaptiveFormats []rawFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

// ParsePage locates the embedded player response in a watch page and decodes
// it. The JSON object is read with a streaming decoder so everything after
// the closing brace is ignored.
func ParsePage(page string) (*PlayerResponse, error) {
	idx := strings.Index(page, responseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("no %s in page", responseMarker)
	}
	rest := page[idx+len(responseMarker):]
	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		return nil, fmt.Errorf("no JSON object after %s", responseMarker)
	}

	var pr PlayerResponse
	dec := json.NewDecoder(strings.NewReader(rest[brace:]))
	if err := dec.Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding player response: %w", err)
	}
	return &pr, nil
}

// DecodeFormats resolves every format in the response into a directly usable
// URL: scrambled signatures go through the runner's decipher, and the
// throttling parameter is rewritten in place. Formats that fail to resolve
// are skipped; an error is returned only when nothing resolves.
func DecodeFormats(pr *PlayerResponse, runner *jsrun.Runner) ([]core.Format, error) {
	raw := append([]rawFormat{}, pr.StreamingData.Formats...)
	raw = append(raw, pr.StreamingData.AdaptiveFormats...)
	if len(raw) == 0 {
		return nil, fmt.Errorf("player response carries no formats")
	}

	var out []core.Format
	var lastErr error
	for _, rf := range raw {
		u, err := resolveURL(rf, runner)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, core.Format{
			Itag:         rf.Itag,
			URL:          u,
			MimeType:     rf.MimeType,
			Bitrate:      rf.Bitrate,
			FPS:          rf.FPS,
			Width:        rf.Width,
			Height:       rf.Height,
			Quality:      rf.Quality,
			QualityLabel: rf.QualityLabel,
			AudioQuality: rf.AudioQuality,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no format resolved: %w", lastErr)
	}
	return out, nil
}

func resolveURL(rf rawFormat, runner *jsrun.Runner) (string, error) {
	streamURL := rf.URL
	if streamURL == "" {
		cipher := rf.SignatureCipher
		if cipher == "" {
			cipher = rf.Cipher
		}
		if cipher == "" {
			return "", fmt.Errorf("itag %d: neither url nor cipher present", rf.Itag)
		}
		resolved, err := decipherCipher(cipher, runner)
		if err != nil {
			return "", fmt.Errorf("itag %d: %w", rf.Itag, err)
		}
		streamURL = resolved
	}
	return rewriteThrottling(streamURL, runner)
}

// decipherCipher unpacks the url/s/sp triple of a signatureCipher value and
// attaches the deciphered signature under the named parameter.
func decipherCipher(cipher string, runner *jsrun.Runner) (string, error) {
	params, err := url.ParseQuery(cipher)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(params.Get("url"))
	if err != nil {
		return "", err
	}

	sig, err := runner.Decipher(params.Get("s"))
	if err != nil {
		return "", err
	}

	sp := params.Get("sp")
	if sp == "" {
		sp = "signature"
	}
	q := u.Query()
	q.Set(sp, sig)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// rewriteThrottling replaces the n query parameter with its transformed
// value. A URL without an n parameter passes through untouched.
func rewriteThrottling(streamURL string, runner *jsrun.Runner) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	n := q.Get("n")
	if n == "" {
		return streamURL, nil
	}
	transformed, err := runner.Transform(n)
	if err != nil {
		return "", fmt.Errorf("transforming n parameter: %w", err)
	}
	q.Set("n", transformed)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LoadSummary reads the short background summary from a plain text file
func LoadSummary(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read summary: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadProfile reads an HTML profile export (e.g. a saved LinkedIn page) and
// extracts its visible text. The agent core only ever sees the resulting
// opaque string.
func LoadProfile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse profile HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	return normalizeText(root.Text()), nil
}

// normalizeText collapses the whitespace left behind by HTML extraction:
// each line trimmed, blank lines dropped, runs of spaces folded.
func normalizeText(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

package scan

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const (
	defaultTitle  = "Untitled Opportunity"
	defaultAgency = "Unknown Agency"
)

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanText(s string) string {
	return normalizeSpace(s)
}

// TruncateText cuts a string to max runes, appending ellipsis if truncated.
// Counting runes rather than bytes keeps the cut on a character boundary.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return string(runes[:maxLen-3]) + "..."
	}
	return string(runes[:maxLen])
}

// HTMLToText converts HTML to plain text, collapsing whitespace. Text nodes
// are joined with a space so adjacent elements ("<p>a</p><p>b</p>") do not
// fuse into one word, which would corrupt keyword matching downstream.
func HTMLToText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw // Fallback to original if parsing fails
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return cleanText(strings.Join(parts, " "))
}

var htmlPolicy = bluemonday.UGCPolicy()

// sanitizeHTML strips unsafe tags and attributes from HTML kept as a full
// description.
func sanitizeHTML(html string) string {
	return htmlPolicy.Sanitize(html)
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// orDefault returns the cleaned value or the fallback when the source
// omitted the field. Defaulting here is what keeps malformed upstream
// records non-fatal.
func orDefault(value, fallback string) string {
	value = cleanText(value)
	if value == "" {
		return fallback
	}
	return value
}

// parseMoney parses a dollar string like "$1,250,000" or "250000.50".
// Returns false for empty, zero or unparseable input so callers keep the
// absent-vs-zero distinction.
func parseMoney(raw string) (float64, bool) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if clean == "" {
		return 0, false
	}
	// Ranges like "500000-1000000" use the lower bound.
	if i := strings.IndexAny(clean, "-–"); i > 0 {
		clean = clean[:i]
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// shortHash yields a 16-char stable identifier fragment for sources that
// expose no usable record id.
func shortHash(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "_")))
	return hex.EncodeToString(sum[:])[:16]
}

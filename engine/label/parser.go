// Package label parses brand/model/serial fields out of raw OCR text
// from appliance rating plates. Matching is pure and table-driven:
// ordered pattern lists with length gates and reject lists, so the
// precedence rules stay testable as data.
package label

import (
	"regexp"
	"strings"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// fieldPattern is one entry in an ordered pattern table.
type fieldPattern struct {
	re      *regexp.Regexp
	minLen  int
	maxLen  int
	rejects map[string]bool
}

// labelWords are the label's own keywords, which keyword patterns can
// over-match onto ("MODEL NUMBER: X" must not yield "NUMBER").
var labelWords = map[string]bool{"NUMBER": true, "NO": true, "NUM": true}

// modelPatterns in precedence order. Captures are alphanumeric+hyphen
// tokens following a label keyword.
var modelPatterns = []fieldPattern{
	{re: regexp.MustCompile(`\bMODEL[:\s#]+([A-Z0-9][A-Z0-9\-]*)`), minLen: 3, maxLen: 30, rejects: labelWords},
	{re: regexp.MustCompile(`\bMODEL NO[:\s#]+([A-Z0-9][A-Z0-9\-]*)`), minLen: 3, maxLen: 30, rejects: labelWords},
	{re: regexp.MustCompile(`\bMODEL NUMBER[:\s#]+([A-Z0-9][A-Z0-9\-]*)`), minLen: 3, maxLen: 30, rejects: labelWords},
	{re: regexp.MustCompile(`\bMOD[:\s#]+([A-Z0-9][A-Z0-9\-]*)`), minLen: 3, maxLen: 30, rejects: labelWords},
}

// genericModelPattern is the last-ditch model match: a letters-then-digits
// code with optional hyphen and trailing alphanumerics.
var genericModelPattern = fieldPattern{
	re:     regexp.MustCompile(`\b([A-Z]{2,4}-?[0-9]{3,6}[A-Z0-9]*)\b`),
	minLen: 5,
	maxLen: 20,
}

// serialPatterns in precedence order.
var serialPatterns = []fieldPattern{
	{re: regexp.MustCompile(`\bSN[:\s#]+([A-Z0-9\-]{5,50})`), minLen: 5, maxLen: 50, rejects: labelWords},
	{re: regexp.MustCompile(`\bS/N[:\s#]+([A-Z0-9\-]{5,50})`), minLen: 5, maxLen: 50, rejects: labelWords},
	{re: regexp.MustCompile(`\bSERIAL NO[:\s#]+([A-Z0-9\-]{5,50})`), minLen: 5, maxLen: 50, rejects: labelWords},
	{re: regexp.MustCompile(`\bSERIAL[:\s#]+([A-Z0-9\-]{5,50})`), minLen: 5, maxLen: 50, rejects: labelWords},
	{re: regexp.MustCompile(`\bSERIAL NUMBER[:\s#]+([A-Z0-9\-]{5,50})`), minLen: 5, maxLen: 50, rejects: labelWords},
}

// bareSerialPattern is the serial fallback: a bare alphanumeric run.
// A digit is required as a plausibility filter so ordinary words never
// pass as serial numbers.
var bareSerialPattern = regexp.MustCompile(`\b[A-Z0-9]{8,20}\b`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Parse extracts brand, model number, and serial number from raw OCR
// text. All fields are independently optional; empty input yields an
// empty LabelInfo.
func Parse(text string) domain.LabelInfo {
	var info domain.LabelInfo

	norm := normalize(text)
	if norm == "" {
		return info
	}

	info.Brand = findBrand(norm)
	info.ModelNumber = findModel(norm)
	info.SerialNumber = findSerial(norm, info.ModelNumber)
	return info
}

func normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToUpper(text), " "))
}

// findBrand returns the first vocabulary brand appearing in the text, in
// list order, rendered in title case.
func findBrand(norm string) string {
	for _, b := range domain.KnownBrands {
		if strings.Contains(norm, b) {
			return domain.TitleBrand(b)
		}
	}
	return ""
}

func findModel(norm string) string {
	for _, p := range modelPatterns {
		if v, ok := firstCapture(p, norm); ok {
			return v
		}
	}
	if v, ok := firstCapture(genericModelPattern, norm); ok {
		return v
	}
	return ""
}

func findSerial(norm, model string) string {
	for _, p := range serialPatterns {
		if v, ok := firstCapture(p, norm); ok {
			return v
		}
	}
	for _, m := range bareSerialPattern.FindAllString(norm, -1) {
		if m == model {
			continue
		}
		if !strings.ContainsAny(m, "0123456789") {
			continue
		}
		return m
	}
	return ""
}

// firstCapture returns the pattern's first captured value that passes
// the length gate and reject list.
func firstCapture(p fieldPattern, norm string) (string, bool) {
	for _, m := range p.re.FindAllStringSubmatch(norm, -1) {
		v := m[1]
		if len(v) < p.minLen || len(v) > p.maxLen {
			continue
		}
		if p.rejects[v] {
			continue
		}
		return v, true
	}
	return "", false
}

package fulfillment

import (
	"regexp"
	"strings"
)

// MaxAddressLines is the number of lines an address is folded into on a label
const MaxAddressLines = 3

var postalCodePattern = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

// FormatAddressLines splits a free-text shipping address on commas into at
// most MaxAddressLines lines. Everything past the second comma-delimited part
// is kept together on the last line. This is a best-effort display
// heuristic, not postal normalization.
func FormatAddressLines(address string) []string {
	parts := strings.Split(address, ",")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) <= MaxAddressLines {
		return lines
	}
	head := lines[:MaxAddressLines-1]
	tail := strings.Join(lines[MaxAddressLines-1:], ", ")
	return append(head, tail)
}

// ExtractPostalCode returns the first ZIP-like token (12345 or 12345-6789)
// found in the address. The second return value is false when none is found,
// in which case the label simply omits the postal code.
func ExtractPostalCode(address string) (string, bool) {
	match := postalCodePattern.FindString(address)
	if match == "" {
		return "", false
	}
	return match, true
}

package chat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxPreambleRates caps how many rate lines go into the preamble.
const maxPreambleRates = 5

// buildPreamble renders the injected system preamble from a rates mapping:
// up to five "KEY: rate" lines. Keys are sorted so the preamble is stable for
// a given mapping. An empty mapping yields an empty preamble.
func buildPreamble(rates map[string]float64) string {
	if len(rates) == 0 {
		return ""
	}

	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > maxPreambleRates {
		keys = keys[:maxPreambleRates]
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strconv.FormatFloat(rates[k], 'g', -1, 64)))
	}
	return strings.Join(lines, "\n")
}

// truncate clips s to at most max code points. Oversized input is clipped
// silently, never rejected.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

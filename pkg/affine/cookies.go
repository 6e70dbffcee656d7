package affine

import (
	"net/http"
	"regexp"
	"strings"
)

// combinedCookieBoundary matches the comma that separates two cookies folded
// into one Set-Cookie value. Commas inside Expires dates are followed by a
// day number, not a "name=" token, so they do not match.
var combinedCookieBoundary = regexp.MustCompile(`,\s*[A-Za-z0-9_\-.]+=`)

// sessionCookies builds the Cookie header value from a sign-in response.
// Each Set-Cookie line contributes its leading name=value pair; pairs are
// joined with "; " in header order.
func sessionCookies(h http.Header) string {
	values := h.Values("Set-Cookie")
	if len(values) == 1 {
		// A proxy may have folded several cookies into a single header
		values = splitCombinedCookies(values[0])
	}

	pairs := make([]string, 0, len(values))
	for _, v := range values {
		pair, _, _ := strings.Cut(v, ";")
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, "; ")
}

func splitCombinedCookies(raw string) []string {
	var parts []string
	start := 0
	for _, loc := range combinedCookieBoundary.FindAllStringIndex(raw, -1) {
		parts = append(parts, raw[start:loc[0]])
		start = loc[0] + 1 // skip the comma, keep the name
	}
	return append(parts, raw[start:])
}

package httpx

import (
	"net/http"
	"regexp"
	"strings"
)

// bearerPattern matches "Bearer <header>.<payload>.<signature>". The token
// itself must have the three dot-delimited segments of a compact JWT.
var bearerPattern = regexp.MustCompile(`^Bearer\s+([A-Za-z0-9_=-]+\.[A-Za-z0-9_=-]+\.[A-Za-z0-9_=-]*)$`)

// AuthorizationHeader pulls the raw authorization value out of the request
// headers, tolerating the usual server front-end quirks:
//
//  1. the canonical Authorization header,
//  2. HTTP_AUTHORIZATION, which some reverse proxies and CGI-style
//     front-ends forward verbatim,
//  3. a case-insensitive scan of every key (old clients have been seen
//     sending "authorization" through proxies that preserve casing).
//
// Returns "" when nothing matches. Pure; never touches the request body.
func AuthorizationHeader(h http.Header) string {
	if v := h.Get("Authorization"); v != "" {
		return strings.TrimSpace(v)
	}

	for key, vals := range h {
		if len(vals) == 0 {
			continue
		}
		if strings.EqualFold(key, "HTTP_AUTHORIZATION") || strings.EqualFold(key, "Authorization") {
			return strings.TrimSpace(vals[0])
		}
	}

	return ""
}

// BearerToken extracts the compact token from a raw authorization value.
// Returns "" when the value is not a well-formed bearer credential.
func BearerToken(raw string) string {
	if raw == "" {
		return ""
	}

	m := bearerPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return m[1]
}

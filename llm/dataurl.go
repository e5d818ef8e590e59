package llm

import (
	"encoding/base64"
	"strings"
)

// DataURL encodes data as a base64 data URL.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a base64 data URL into its media type and payload.
// It reports false for anything else, including remote URLs.
func ParseDataURL(url string) (mediaType string, data string, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", "", false
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found = strings.CutSuffix(header, ";base64")
	if !found || mediaType == "" {
		return "", "", false
	}
	return mediaType, payload, true
}

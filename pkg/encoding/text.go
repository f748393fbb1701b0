// Package encoding provides text decoding for free-form PLY header lines.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// HeaderTextToUTF8 converts a comment or obj_info payload to UTF-8.
// Valid UTF-8 is returned unchanged; anything else is treated as ISO-8859-1,
// which is what most scanner software writes into PLY headers.
func HeaderTextToUTF8(data []byte) string {
	data = TrimLineEnding(data)
	if utf8.Valid(data) {
		return string(data)
	}
	decoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		// Return as-is if decoding fails
		return string(data)
	}
	return string(result)
}

// TrimLineEnding removes a trailing "\n" or "\r\n".
func TrimLineEnding(data []byte) []byte {
	data = bytes.TrimSuffix(data, []byte("\n"))
	return bytes.TrimSuffix(data, []byte("\r"))
}

// HeaderKeyword splits a header line into its keyword and the remaining payload.
func HeaderKeyword(line []byte) (string, []byte) {
	line = TrimLineEnding(line)
	line = bytes.TrimLeft(line, " \t")
	idx := bytes.IndexAny(line, " \t")
	if idx < 0 {
		return strings.TrimSpace(string(line)), nil
	}
	return string(line[:idx]), bytes.TrimLeft(line[idx+1:], " \t")
}

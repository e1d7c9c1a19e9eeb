// Package media converts question images between their JSON transport form
// (plain or data-URI base64) and the bytes kept in storage.
package media

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"quiz-api-service/internal/domain"
)

var dataURIPattern = regexp.MustCompile(`(?s)^data:.*?;base64,(.*)$`)

// Decode turns a transport image into bytes.
//
// Characters outside the base64 alphabet are skipped and decoding stops at
// the '=' padding that completes a group. Older clients stored images as raw
// text whose length could not be valid base64; when the payload ends with a
// single dangling data character it is kept verbatim so those rows keep
// round-tripping.
func Decode(image string) ([]byte, error) {
	if image == "" {
		return []byte{}, nil
	}

	payload := image
	if strings.HasPrefix(payload, "data:") {
		m := dataURIPattern.FindStringSubmatch(payload)
		if m == nil {
			return nil, domain.InvalidInput("invalid data URI format for image")
		}
		payload = m[1]
	}

	for i := 0; i < len(payload); i++ {
		if payload[i] >= utf8.RuneSelf {
			return nil, domain.InvalidInput("image must contain only ASCII characters")
		}
	}

	data, quadPos := scan(payload)
	switch quadPos {
	case 0:
	case 1:
		return []byte(payload), nil
	default:
		return nil, domain.InvalidInput("image is not valid base64")
	}

	out, err := base64.RawStdEncoding.DecodeString(data)
	if err != nil {
		return nil, domain.InvalidInput("image is not valid base64")
	}
	return out, nil
}

// Encode renders stored image bytes for transport. Bytes that are already
// valid UTF-8 text are passed through unchanged.
func Encode(image []byte) string {
	if len(image) == 0 {
		return ""
	}
	if utf8.Valid(image) {
		return string(image)
	}
	return base64.StdEncoding.EncodeToString(image)
}

// scan collects the base64 data characters of s up to the padding that
// completes a group. quadPos is the number of data characters in the trailing
// unfinished group; it is 0 when the input ends on a group boundary or the
// padding closed the group.
func scan(s string) (data string, quadPos int) {
	var b strings.Builder
	b.Grow(len(s))
	pads := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '=':
			// padding only counts once a group holds two data characters
			if quadPos >= 2 {
				pads++
				if quadPos+pads >= 4 {
					return b.String(), 0
				}
			}
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			pads = 0
			b.WriteByte(c)
			quadPos = (quadPos + 1) % 4
		}
	}
	return b.String(), quadPos
}

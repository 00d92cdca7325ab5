package utils // package utils provides the short token helpers used in share links

import (
	"strconv"       // base-36 rendering
	"strings"       // normalisation and padding
	"unicode/utf16" // the rolling hash runs over UTF-16 code units
)

// HostTokenLength is the fixed length of a host token.
const HostTokenLength = 6

// degenerateToken is what HostToken yields when the identifier contains no
// parsable hex digits.  It is deterministic, so malformed identifiers still
// route consistently.
const degenerateToken = "NaN"

// HostToken derives the short, URL-safe display token for a host identifier.
// Separators are stripped, the first 8 characters are read as a base-16
// number, rendered in base 36, left-padded with '0' to 6 characters and then
// truncated to 6.  Only those 8 characters contribute, so identifiers that
// share them collide.  The mapping is one way.
func HostToken(hostID string) string {
	compact := []rune(strings.ReplaceAll(hostID, "-", ""))
	if len(compact) > 8 {
		compact = compact[:8]
	}
	n, ok := parseLeadingHex(string(compact))
	if !ok {
		return padTruncate(degenerateToken, HostTokenLength)
	}
	return padTruncate(strconv.FormatUint(n, 36), HostTokenLength)
}

// SecretToken hashes a secret (typically an email) into an opaque lookup
// token of the given length.  The input is lower-cased and trimmed before a
// 32-bit polynomial rolling hash (h = h*31 + c) is taken over its UTF-16 code
// units.  This is not a cryptographic hash; collisions become likely as the
// population grows.
func SecretToken(secret string, length int) string {
	if length <= 0 {
		length = HostTokenLength
	}
	return rollingToken(normalizeSecret(secret), length)
}

// GuestToken is the lookup token for a guest email.  The "guest:" namespace
// keeps it distinct from the same address used as staff.
func GuestToken(email string) string {
	return rollingToken("guest:"+normalizeSecret(email), HostTokenLength)
}

// StaffToken is the lookup token for a staff email.
func StaffToken(email string) string {
	return rollingToken("staff:"+normalizeSecret(email), HostTokenLength)
}

// ManagerToken is the lookup token for a property manager email.
func ManagerToken(email string) string {
	return SecretToken(email, HostTokenLength)
}

func normalizeSecret(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rollingToken(input string, length int) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(input)) {
		h = h*31 + int32(unit) // wraps like a 32-bit signed int
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return padTruncate(strconv.FormatInt(abs, 36), length)
}

// parseLeadingHex reads the longest run of hex digits at the start of s,
// after optional whitespace, a '+' sign and a 0x prefix.  It reports false
// when no digit was read.
func parseLeadingHex(s string) (uint64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	s = strings.TrimPrefix(s, "+")
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	var n uint64
	digits := 0
	for i := 0; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok {
			break
		}
		n = n*16 + uint64(d)
		digits++
	}
	return n, digits > 0
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// padTruncate left-pads s with '0' to length and then keeps the first
// length characters.
func padTruncate(s string, length int) string {
	if len(s) < length {
		s = strings.Repeat("0", length-len(s)) + s
	}
	return s[:length]
}

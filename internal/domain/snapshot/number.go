package snapshot

import (
	"math"
	"strings"
)

var numberNoise = strings.NewReplacer(",", "", `"`, "")

// CleanNumber decodes a locale-formatted integer such as "12,345,678".
// Thousands separators and quotes are dropped, an optional sign is honoured
// and parsing stops at the first non-digit, so "1.5" decodes to 1.
// Input without any leading digit decodes to zero.
func CleanNumber(raw string) int64 {
	s := strings.TrimSpace(numberNoise.Replace(raw))
	if s == "" {
		return 0
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
		} else {
			n = n*10 + d
		}
		digits++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

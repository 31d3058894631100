package scoring

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Default weights used when nothing else is configured.
const (
	DefaultT4Mult        = 10
	DefaultT5Mult        = 20
	DefaultDeadsMult     = 50
	DefaultTargetPercent = 300
)

// Config carries the four scoring weights. TargetPercent is a percentage of
// starting power, so 300 asks for three times the governor's power in DKP.
type Config struct {
	T4Mult        float64 `json:"t4_mult" koanf:"t4_mult"`
	T5Mult        float64 `json:"t5_mult" koanf:"t5_mult"`
	DeadsMult     float64 `json:"deads_mult" koanf:"deads_mult"`
	TargetPercent float64 `json:"target_percent" koanf:"target_percent"`
}

// DefaultConfig returns the stock weights.
func DefaultConfig() Config {
	return Config{
		T4Mult:        DefaultT4Mult,
		T5Mult:        DefaultT5Mult,
		DeadsMult:     DefaultDeadsMult,
		TargetPercent: DefaultTargetPercent,
	}
}

// Sanitize replaces negative, NaN and infinite weights with zero.
func (c Config) Sanitize() Config {
	c.T4Mult = sanitize(c.T4Mult)
	c.T5Mult = sanitize(c.T5Mult)
	c.DeadsMult = sanitize(c.DeadsMult)
	c.TargetPercent = sanitize(c.TargetPercent)
	return c
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseConfig builds a Config from form-style text inputs.
func ParseConfig(t4, t5, deads, target string) Config {
	return Config{
		T4Mult:        ParseWeight(t4),
		T5Mult:        ParseWeight(t5),
		DeadsMult:     ParseWeight(deads),
		TargetPercent: ParseWeight(target),
	}
}

// ParseWeight decodes a weight permissively. The longest leading decimal
// prefix is used ("2.5x" is 2.5); empty or unparsable text yields zero.
// The result is always finite and non-negative.
func ParseWeight(raw string) float64 {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := floatPrefix(s)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// floatPrefix returns the length of the longest prefix of s shaped like
// [sign] digits [. digits] [e [sign] digits].
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
